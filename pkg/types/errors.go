// Package types holds the error taxonomy shared by the expression engine and
// the service surfaces built on top of it.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error tag constants.
const (
	TagParseError     = "ParseError"
	TagEvaluation     = "EvaluationError"
	TagStackUnderflow = "StackUnderflow"
	TagDivisionByZero = "DivisionByZero"
	TagMalformedStack = "MalformedStack"
	TagNonFinite      = "NonFinite"
)

// Sentinel kinds for use with errors.Is. A *CalcError matches every sentinel
// whose tag it carries.
var (
	ErrParse          = errors.New("parse error")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrDivisionByZero = errors.New("division by zero")
	ErrMalformedStack = errors.New("malformed stack")
	ErrNonFinite      = errors.New("non-finite result")
)

var sentinelTags = map[error]string{
	ErrParse:          TagParseError,
	ErrStackUnderflow: TagStackUnderflow,
	ErrDivisionByZero: TagDivisionByZero,
	ErrMalformedStack: TagMalformedStack,
	ErrNonFinite:      TagNonFinite,
}

// CalcError is a failure raised while parsing or evaluating an expression.
// Pos is the byte offset in the source expression, or -1 when unknown.
type CalcError struct {
	Message string
	Pos     int
	Tags    []string
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at position %d (tags=[%s])", e.Message, e.Pos, strings.Join(e.Tags, ", "))
	}
	return fmt.Sprintf("%s (tags=[%s])", e.Message, strings.Join(e.Tags, ", "))
}

// Is reports whether target is one of the sentinel kinds carried by e.
func (e *CalcError) Is(target error) bool {
	tag, ok := sentinelTags[target]
	return ok && e.HasTag(tag)
}

// HasTag returns true if the error has the specified tag.
func (e *CalcError) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Common error constructors.

// NewParseError creates a ParseError at the given position.
func NewParseError(pos int, msg string) *CalcError {
	return &CalcError{Message: msg, Pos: pos, Tags: []string{TagParseError}}
}

// NewStackUnderflowError creates a StackUnderflow evaluation error.
func NewStackUnderflowError(msg string) *CalcError {
	return &CalcError{Message: msg, Pos: -1, Tags: []string{TagEvaluation, TagStackUnderflow}}
}

// NewDivisionByZeroError creates a DivisionByZero evaluation error.
func NewDivisionByZeroError() *CalcError {
	return &CalcError{Message: "division by zero", Pos: -1, Tags: []string{TagEvaluation, TagDivisionByZero}}
}

// NewMalformedStackError creates an error for postfix input that leaves more
// than one value on the stack.
func NewMalformedStackError(remaining int) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("expected one value on the stack, found %d", remaining),
		Pos:     -1,
		Tags:    []string{TagEvaluation, TagMalformedStack},
	}
}

// NewNonFiniteError creates an error for results that overflow to ±Inf or NaN.
func NewNonFiniteError(v float64) *CalcError {
	return &CalcError{Message: fmt.Sprintf("result %v is not finite", v), Pos: -1, Tags: []string{TagEvaluation, TagNonFinite}}
}

// AsCalcError extracts a *CalcError from err's chain, if any.
func AsCalcError(err error) (*CalcError, bool) {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
