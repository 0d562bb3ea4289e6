package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/calculator/pkg/types"
)

// MaxExpressionLength is the maximum allowed length for a single expression.
const MaxExpressionLength = 1024

// Lexer tokenizes a calculator expression string.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize splits input on operator boundaries and rewrites every unary
// minus as a subtraction from an implicit zero. Blank input yields no tokens.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	if len(l.input) > MaxExpressionLength {
		return nil, types.NewParseError(MaxExpressionLength,
			fmt.Sprintf("expression exceeds maximum length of %d characters", MaxExpressionLength))
	}
	for l.pos < len(l.input) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

// next consumes either one operator or the run of bytes up to the next one.
func (l *Lexer) next() error {
	ch := l.input[l.pos]
	if op, ok := operatorFor(ch); ok {
		if op == OpSub && l.expectsOperand() {
			l.tokens = append(l.tokens, numberToken("0", 0, l.pos))
		}
		l.tokens = append(l.tokens, operatorToken(op, l.pos))
		l.pos++
		return nil
	}

	start := l.pos
	for l.pos < len(l.input) && strings.IndexByte(Operators, l.input[l.pos]) < 0 {
		l.pos++
	}
	raw := l.input[start:l.pos]
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	start += strings.Index(raw, text)
	num, err := parseNumber(text, start)
	if err != nil {
		return err
	}
	l.tokens = append(l.tokens, numberToken(text, num, start))
	return nil
}

// expectsOperand reports whether a minus at the current position has no left
// operand, i.e. it is the first token or follows another operator.
func (l *Lexer) expectsOperand() bool {
	if len(l.tokens) == 0 {
		return true
	}
	return l.tokens[len(l.tokens)-1].Type == TokenOperator
}

// parseNumber parses a run of digits containing at most one decimal point.
func parseNumber(text string, pos int) (float64, error) {
	digits, points := 0, 0
	for i := 0; i < len(text); i++ {
		switch ch := text[i]; {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.':
			points++
			if points > 1 {
				return 0, types.NewParseError(pos+i, fmt.Sprintf("invalid number %q: more than one decimal point", text))
			}
		default:
			return 0, types.NewParseError(pos+i, fmt.Sprintf("unexpected character %q in number %q", string(ch), text))
		}
	}
	if digits == 0 {
		return 0, types.NewParseError(pos, fmt.Sprintf("invalid number %q", text))
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, types.NewParseError(pos, fmt.Sprintf("invalid number %q", text))
	}
	if math.IsInf(f, 0) {
		return 0, types.NewParseError(pos, fmt.Sprintf("number %q out of range", text))
	}
	return f, nil
}
