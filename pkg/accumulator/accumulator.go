// Package accumulator holds the text buffers a calculator front end edits key
// by key before handing a complete expression to the expression engine.
package accumulator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lemonberrylabs/calculator/pkg/expr"
)

// Placeholder is the entry text shown before anything has been typed.
const Placeholder = "0.0"

// Commands accepted by Press besides digits and operators.
const (
	CmdEquals     = "="
	CmdClear      = "C"
	CmdClearEntry = "CE"
	CmdDot        = "."
	CmdBackspace  = "<"
)

// ErrUnknownCommand is returned by Press for input it cannot route.
var ErrUnknownCommand = errors.New("unknown command")

// Display is the text a front end renders.
type Display struct {
	Entry   string `json:"entry"`
	Pending string `json:"pending"`
}

// Calculation is one completed "=" press.
type Calculation struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// Accumulator tracks the number being typed (entry) and the operand/operator
// text already committed (pending). The zero value is not ready for use; call
// New. An Accumulator is not safe for concurrent use.
type Accumulator struct {
	entry   string
	pending string

	// onCalculate, if set, observes every completed calculation.
	onCalculate func(Calculation)
}

// New returns an accumulator in its initial state.
func New() *Accumulator {
	return &Accumulator{entry: Placeholder}
}

// OnCalculate registers fn to be called after every completed calculation.
func (a *Accumulator) OnCalculate(fn func(Calculation)) {
	a.onCalculate = fn
}

// Display returns the current buffers.
func (a *Accumulator) Display() Display {
	return Display{Entry: a.entry, Pending: a.pending}
}

// Press routes a single command: a digit, an operator, ".", "=", "C", "CE"
// or "<".
func (a *Accumulator) Press(cmd string) error {
	switch {
	case len(cmd) == 1 && cmd[0] >= '0' && cmd[0] <= '9':
		a.AppendDigit(cmd[0])
	case isOperator(cmd):
		a.AppendOperator(cmd[0])
	default:
		switch cmd {
		case CmdDot:
			a.AppendDecimalPoint()
		case CmdEquals:
			a.Equals()
		case CmdClear:
			a.Clear()
		case CmdClearEntry:
			a.ClearEntry()
		case CmdBackspace:
			a.Backspace()
		default:
			return fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
		}
	}
	return nil
}

// AppendDigit appends d to the entry, replacing the placeholder or an error.
func (a *Accumulator) AppendDigit(d byte) {
	if a.resettable() {
		a.entry = string(d)
		return
	}
	a.entry += string(d)
}

// AppendDecimalPoint adds a decimal point unless the entry already has one,
// which includes the placeholder. An error or an empty entry starts "0.".
func (a *Accumulator) AppendDecimalPoint() {
	switch {
	case strings.Contains(a.entry, "."):
	case a.entry == "", a.entry == expr.ErrorText:
		a.entry = "0."
	case a.entry == "-":
		a.entry = "-0."
	default:
		a.entry += "."
	}
}

// AppendOperator commits the entry followed by op. With nothing typed, a
// minus starts a negative literal and any other operator replaces a trailing
// pending operator.
func (a *Accumulator) AppendOperator(op byte) {
	if a.entry == "-" {
		if op == '-' {
			return
		}
		a.entry = ""
	}

	switch {
	case a.entry == "" && op == '-':
		a.entry = "-"
	case a.entry == "":
		if a.endsWithOperator() {
			a.pending = a.pending[:len(a.pending)-1] + string(op)
		}
	case a.entry != expr.ErrorText:
		a.pending += a.entry + string(op)
		a.entry = ""
	}
}

// Equals evaluates pending+entry and shows the result. It does nothing until
// an operator has been committed and a second operand typed.
func (a *Accumulator) Equals() {
	if a.pending == "" || a.entry == "" {
		return
	}
	full := a.pending + a.entry
	a.entry = expr.Calculate(full)
	a.pending = ""
	if a.onCalculate != nil {
		a.onCalculate(Calculation{Expression: full, Result: a.entry})
	}
}

// Clear resets both buffers.
func (a *Accumulator) Clear() {
	a.entry = Placeholder
	a.pending = ""
}

// ClearEntry resets only the entry.
func (a *Accumulator) ClearEntry() {
	a.entry = Placeholder
}

// Backspace removes the last character typed into the entry.
func (a *Accumulator) Backspace() {
	if a.resettable() || a.entry == "" {
		return
	}
	a.entry = a.entry[:len(a.entry)-1]
	if a.entry == "" && a.pending == "" {
		a.entry = Placeholder
	}
}

// resettable reports whether the next digit replaces the entry.
func (a *Accumulator) resettable() bool {
	return a.entry == Placeholder || a.entry == expr.ErrorText
}

func (a *Accumulator) endsWithOperator() bool {
	if a.pending == "" {
		return false
	}
	return strings.IndexByte(expr.Operators, a.pending[len(a.pending)-1]) >= 0
}

func isOperator(cmd string) bool {
	_, ok := expr.ParseOperator(cmd)
	return ok
}
