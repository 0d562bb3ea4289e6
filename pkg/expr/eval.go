package expr

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/calculator/pkg/types"
)

// Apply computes a op b. Division by zero is an error rather than ±Inf/NaN.
func (op Operator) Apply(a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, types.NewDivisionByZeroError()
		}
		return a / b, nil
	default:
		panic(fmt.Sprintf("expr: unknown operator %d", int(op)))
	}
}

// EvaluatePostfix evaluates a space-delimited postfix expression as produced
// by ToPostfix. Exactly one value must remain once every token is consumed.
func EvaluatePostfix(postfix string) (float64, error) {
	tokens, err := parsePostfix(postfix)
	if err != nil {
		return 0, err
	}
	return Evaluate(tokens)
}

// Evaluate evaluates tokens already in postfix order.
func Evaluate(tokens []Token) (float64, error) {
	stack := make([]float64, 0, len(tokens))

	for _, tok := range tokens {
		switch tok.Type {
		case TokenNumber:
			stack = append(stack, tok.Num)
		case TokenOperator:
			if len(stack) < 2 {
				return 0, types.NewStackUnderflowError(
					fmt.Sprintf("operator %s needs two operands, have %d", tok.Op, len(stack)))
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			v, err := tok.Op.Apply(a, b)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)
		}
	}

	switch len(stack) {
	case 0:
		return 0, types.NewStackUnderflowError("empty expression")
	case 1:
		return stack[0], nil
	default:
		return 0, types.NewMalformedStackError(len(stack))
	}
}

// parsePostfix reads the whitespace-separated tokens of a postfix string.
func parsePostfix(postfix string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for _, f := range strings.Fields(postfix) {
		pos += strings.Index(postfix[pos:], f)
		if op, ok := ParseOperator(f); ok {
			tokens = append(tokens, operatorToken(op, pos))
		} else {
			num, err := parseNumber(f, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, numberToken(f, num, pos))
		}
		pos += len(f)
	}
	return tokens, nil
}
