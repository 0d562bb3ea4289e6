package accumulator

// Key names for non-printing keys.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
)

// KeyCommand maps a keyboard key to the command it triggers. Digits,
// operators and "." map to themselves, Enter to "=", Escape to "C", and
// Backspace/Delete to "CE". ok is false for keys with no binding.
func KeyCommand(key string) (cmd string, ok bool) {
	switch key {
	case KeyEnter, "\r", "\n":
		return CmdEquals, true
	case KeyEscape, "\x1b":
		return CmdClear, true
	case KeyBackspace, KeyDelete, "\x7f", "\b":
		return CmdClearEntry, true
	}
	if len(key) != 1 {
		return "", false
	}
	switch ch := key[0]; {
	case ch >= '0' && ch <= '9', ch == '.', isOperator(key):
		return key, true
	case ch == '=':
		return CmdEquals, true
	}
	return "", false
}

// PressAll presses each command in order, stopping at the first error.
func (a *Accumulator) PressAll(cmds []string) error {
	for _, cmd := range cmds {
		if err := a.Press(cmd); err != nil {
			return err
		}
	}
	return nil
}
