package expr

import (
	"math"
	"strconv"

	"github.com/lemonberrylabs/calculator/pkg/types"
)

// ErrorText is the display text returned for any failed calculation.
const ErrorText = "Error"

// Result describes one run of the pipeline. Display is what Calculate
// returns; Err holds the cause when Display is ErrorText.
type Result struct {
	Expression string
	Postfix    string
	Value      float64
	Display    string
	Err        error
}

// Calculate evaluates an infix expression and formats the result. Any parse
// or evaluation failure, including a non-finite result, yields ErrorText.
// Calculate is safe for concurrent use.
func Calculate(expression string) string {
	return Explain(expression).Display
}

// Explain runs the same pipeline as Calculate but keeps the postfix form and
// the failure cause.
func Explain(expression string) Result {
	res := Result{Expression: expression, Display: ErrorText}

	tokens, err := Tokenize(expression)
	if err != nil {
		res.Err = err
		return res
	}
	postfix := Postfix(tokens)
	res.Postfix = joinTokens(postfix)

	v, err := Evaluate(postfix)
	if err != nil {
		res.Err = err
		return res
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		res.Err = types.NewNonFiniteError(v)
		return res
	}

	res.Value = v
	res.Display = Format(v)
	return res
}

// Format renders v as an integer when it has no fractional part and fits in
// an int64, and as the shortest round-trip decimal otherwise. The output never
// uses exponent notation, so it can be fed back to Tokenize.
func Format(v float64) string {
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
