package accumulator

import (
	"errors"
	"strings"
	"testing"
)

func TestAccumulatorInput(t *testing.T) {
	a := New()
	check(t, a, Placeholder, "")
	// digits replace the placeholder
	press(t, a, "1", "2", "3")
	check(t, a, "123", "")
	// second decimal point is ignored
	press(t, a, ".", "4", ".", "5")
	check(t, a, "123.45", "")
	// rubout
	press(t, a, "<", "<")
	check(t, a, "123.", "")
	press(t, a, "<", "<", "<", "<")
	check(t, a, Placeholder, "")
}

func TestAccumulatorCalculate(t *testing.T) {
	tests := []struct {
		keys    string
		entry   string
		pending string
	}{
		{"7 + 3 =", "10", ""},
		{"2 + 3 * 4 =", "14", ""},
		{"8 - 3 - 2 =", "3", ""},
		{"5 + * 2 =", "10", ""},    // operator replaced
		{"5 + * / 2 =", "2.5", ""}, // replaced twice
		{"- 5 + 3 =", "-2", ""},    // placeholder committed as 0.0
		{"5 * - 2 =", "-2", ""},    // negative literal, 5*0-2
		{"5 * - + 2 =", "7", ""},   // bare minus discarded
		{"5 / 0 =", "Error", ""},
		{"5 / 0 = 7", "7", ""},     // digit clears the error
		{"5 / 0 = +", "Error", ""}, // operators ignored on error
		{"9 =", "9", ""},           // nothing pending
		{"9 +", "", "9+"},
		{"9 + =", "", "9+"}, // no second operand yet
		{"1 . 5 + . 5 =", "2", ""},
		{"1 + 2 C", Placeholder, ""},
		{"1 + 2 CE", Placeholder, "1+"},
		{"1 + 2 CE 4 =", "5", ""},
		{"1 + 2 = 3", "33", ""}, // digits append to a result
		{"+ 2 =", "2", ""},      // 0.0+2
		{". 5 + 1 =", "6", ""},  // point on the placeholder ignored
	}

	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			a := New()
			press(t, a, strings.Fields(tt.keys)...)
			check(t, a, tt.entry, tt.pending)
		})
	}
}

func TestPendingNeverEndsWithTwoOperators(t *testing.T) {
	a := New()
	press(t, a, "4")
	for _, op := range []string{"+", "-", "*", "/", "+", "-", "-", "*"} {
		press(t, a, op)
		p := a.Display().Pending
		if len(p) >= 2 && isOperator(p[len(p)-2:len(p)-1]) && isOperator(p[len(p)-1:]) {
			t.Fatalf("pending %q ends with two operators", p)
		}
	}
}

func TestDecimalPoint(t *testing.T) {
	a := New()
	// the placeholder already has a point
	press(t, a, ".")
	check(t, a, Placeholder, "")
	press(t, a, "5")
	check(t, a, "5", "")
	press(t, a, "+", ".", "5")
	check(t, a, "0.5", "5+")
	press(t, a, "C", "9", "+", "-", ".", "5")
	check(t, a, "-0.5", "9+")
	press(t, a, "C", "1", "/", "0", "=", ".")
	check(t, a, "0.", "")
}

func TestContinueFromLargeResult(t *testing.T) {
	a := New()
	pressKeys(t, a, "10000000000*100000000000=")
	check(t, a, "1000000000000000000000", "")
	pressKeys(t, a, "/1000=")
	check(t, a, "1000000000000000000", "")
	pressKeys(t, a, "*1000000000000000=")
	check(t, a, "1000000000000000000000000000000000", "")
	pressKeys(t, a, "-1=")
	check(t, a, "1000000000000000000000000000000000", "")
}

func TestPressUnknownCommand(t *testing.T) {
	a := New()
	err := a.Press("%")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	check(t, a, Placeholder, "")
}

func TestOnCalculate(t *testing.T) {
	a := New()
	var got []Calculation
	a.OnCalculate(func(c Calculation) { got = append(got, c) })
	press(t, a, "6", "*", "7", "=", "+", "1", "=")
	want := []Calculation{
		{Expression: "6*7", Result: "42"},
		{Expression: "42+1", Result: "43"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d calculations, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("calculation %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		key string
		cmd string
		ok  bool
	}{
		{"7", "7", true},
		{"+", "+", true},
		{"/", "/", true},
		{".", ".", true},
		{"=", "=", true},
		{KeyEnter, "=", true},
		{"\r", "=", true},
		{KeyEscape, "C", true},
		{KeyBackspace, "CE", true},
		{KeyDelete, "CE", true},
		{"a", "", false},
		{"F1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cmd, ok := KeyCommand(tt.key)
			if cmd != tt.cmd || ok != tt.ok {
				t.Errorf("KeyCommand(%q) = %q, %v; want %q, %v", tt.key, cmd, ok, tt.cmd, tt.ok)
			}
		})
	}
}

func press(t *testing.T, a *Accumulator, cmds ...string) {
	t.Helper()
	if err := a.PressAll(cmds); err != nil {
		t.Fatalf("press %v: %v", cmds, err)
	}
}

// pressKeys presses every byte of keys as its own command.
func pressKeys(t *testing.T, a *Accumulator, keys string) {
	t.Helper()
	for i := 0; i < len(keys); i++ {
		press(t, a, keys[i:i+1])
	}
}

func check(t *testing.T, a *Accumulator, entry, pending string) {
	t.Helper()
	d := a.Display()
	if d.Entry != entry || d.Pending != pending {
		t.Fatalf("wrong display\n  got: entry=%q pending=%q\n want: entry=%q pending=%q", d.Entry, d.Pending, entry, pending)
	}
}
