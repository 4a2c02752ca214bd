package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	EmptyExpressionErrorTag      ErrorTag = "EmptyExpressionError"
	InvalidNumberErrorTag        ErrorTag = "InvalidNumberError"
	RecursionErrorTag            ErrorTag = "RecursionError"
	TrailingTokenErrorTag        ErrorTag = "TrailingTokenError"
	UnexpectedCharacterErrorTag  ErrorTag = "UnexpectedCharacterError"
	UnexpectedTokenErrorTag      ErrorTag = "UnexpectedTokenError"
	UnmatchedParenthesisErrorTag ErrorTag = "UnmatchedParenthesisError"
	ZeroDivisionErrorTag         ErrorTag = "ZeroDivisionError"
)

var (
	lexErrorTags = []ErrorTag{
		InvalidNumberErrorTag,
		UnexpectedCharacterErrorTag,
	}
	parseErrorTags = []ErrorTag{
		EmptyExpressionErrorTag,
		RecursionErrorTag,
		TrailingTokenErrorTag,
		UnexpectedTokenErrorTag,
		UnmatchedParenthesisErrorTag,
	}
	evalErrorTags = []ErrorTag{
		ZeroDivisionErrorTag,
	}
)

type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	tags := []any{e.Tag}
	for err := error(e); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok && e.Tag != tags[len(tags)-1] {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags": tags,
	}
	if e.Err != nil {
		o["message"] = e.Err.Error()
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

func errorHasTagIn(err error, tags []ErrorTag) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return lo.Contains(tags, e.Tag)
}

// IsLexError reports whether err was raised while tokenizing the source text.
func IsLexError(err error) bool {
	return errorHasTagIn(err, lexErrorTags)
}

// IsParseError reports whether err was raised while constructing the expression tree.
func IsParseError(err error) bool {
	return errorHasTagIn(err, parseErrorTags)
}

// IsEvalError reports whether err was raised while evaluating the expression tree.
func IsEvalError(err error) bool {
	return errorHasTagIn(err, evalErrorTags)
}

// TagOf extracts the ErrorTag from err, or "" when err carries no tag.
func TagOf(err error) ErrorTag {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Tag
}

func NewError(tag ErrorTag, format string, args ...any) *Error {
	return &Error{
		Tag: tag,
		Err: fmt.Errorf(format, args...),
	}
}
