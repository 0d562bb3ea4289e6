// Package expr implements the calculator expression engine: tokenizing an
// infix expression, converting it to postfix order, evaluating the postfix
// form and formatting the result for display.
package expr

import "strconv"

// Operator is one of the four binary arithmetic operators.
type Operator int

const (
	OpAdd Operator = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
)

// Operators contains the bytes which are considered to be operators.
const Operators = "+-*/"

// ParseOperator returns the operator for sym. ok is false for anything other
// than a single operator character.
func ParseOperator(sym string) (op Operator, ok bool) {
	if len(sym) != 1 {
		return 0, false
	}
	return operatorFor(sym[0])
}

func operatorFor(ch byte) (Operator, bool) {
	switch ch {
	case '+':
		return OpAdd, true
	case '-':
		return OpSub, true
	case '*':
		return OpMul, true
	case '/':
		return OpDiv, true
	default:
		return 0, false
	}
}

// String returns the operator symbol.
func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		panic("expr: unknown operator " + strconv.Itoa(int(op)))
	}
}

// Precedence ranks how tightly the operator binds. Multiplication and
// division always dominate addition and subtraction.
func (op Operator) Precedence() int {
	switch op {
	case OpAdd, OpSub:
		return 1
	case OpMul, OpDiv:
		return 2
	default:
		panic("expr: unknown operator " + strconv.Itoa(int(op)))
	}
}

// TokenType represents the kind of a token.
type TokenType int

const (
	TokenNumber   TokenType = iota // numeric literal
	TokenOperator                  // + - * /
)

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical token. Synthetic zeros inserted for a unary
// minus carry the position of the minus sign they precede.
type Token struct {
	Type  TokenType
	Value string   // source text, "0" for synthetic zeros
	Num   float64  // parsed value (for TokenNumber)
	Op    Operator // operator (for TokenOperator)
	Pos   int      // byte offset in source
}

// String returns the token's text as it appears in postfix output.
func (t Token) String() string {
	if t.Type == TokenOperator {
		return t.Op.String()
	}
	return t.Value
}

func numberToken(text string, num float64, pos int) Token {
	return Token{Type: TokenNumber, Value: text, Num: num, Pos: pos}
}

func operatorToken(op Operator, pos int) Token {
	return Token{Type: TokenOperator, Value: op.String(), Op: op, Pos: pos}
}
