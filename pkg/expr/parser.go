package expr

import (
	"fmt"
	"strings"
)

// ToPostfix converts an infix expression into a space-delimited postfix
// string. Blank input produces an empty string, which fails evaluation.
func ToPostfix(input string) (string, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return "", fmt.Errorf("tokenize: %w", err)
	}
	return joinTokens(Postfix(tokens)), nil
}

// Postfix reorders infix tokens into postfix order. Before an operator is
// pushed, every stacked operator of greater or equal precedence is emitted,
// so operators of equal precedence associate to the left.
func Postfix(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Type {
		case TokenNumber:
			out = append(out, tok)
		case TokenOperator:
			for len(stack) > 0 && stack[len(stack)-1].Op.Precedence() >= tok.Op.Precedence() {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}

	for len(stack) > 0 {
		out = append(out, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return out
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}
