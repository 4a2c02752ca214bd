package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/exprcalc/internal/types"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		tag     types.ErrorTag
		isLex   bool
		isParse bool
		isEval  bool
	}{
		{tag: types.UnexpectedCharacterErrorTag, isLex: true},
		{tag: types.InvalidNumberErrorTag, isLex: true},
		{tag: types.EmptyExpressionErrorTag, isParse: true},
		{tag: types.UnexpectedTokenErrorTag, isParse: true},
		{tag: types.UnmatchedParenthesisErrorTag, isParse: true},
		{tag: types.TrailingTokenErrorTag, isParse: true},
		{tag: types.RecursionErrorTag, isParse: true},
		{tag: types.ZeroDivisionErrorTag, isEval: true},
	} {
		tt := tt
		t.Run(string(tt.tag), func(t *testing.T) {
			t.Parallel()

			err := types.NewError(tt.tag, "boom")
			if got := types.IsLexError(err); got != tt.isLex {
				t.Errorf("IsLexError: expect to %v but got %v", tt.isLex, got)
			}
			if got := types.IsParseError(err); got != tt.isParse {
				t.Errorf("IsParseError: expect to %v but got %v", tt.isParse, got)
			}
			if got := types.IsEvalError(err); got != tt.isEval {
				t.Errorf("IsEvalError: expect to %v but got %v", tt.isEval, got)
			}
			if got := types.TagOf(err); got != tt.tag {
				t.Errorf("TagOf: expect to %s but got %s", tt.tag, got)
			}
		})
	}
}

func TestErrorClassificationOfPlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("plain")
	if types.IsLexError(err) || types.IsParseError(err) || types.IsEvalError(err) {
		t.Error("a plain error should not be classified")
	}
	if got := types.TagOf(err); got != "" {
		t.Errorf("expect to empty tag but got %s", got)
	}
}

func TestErrorClassificationOfWrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("right of operator %q: %w", "/", types.NewError(types.ZeroDivisionErrorTag, "division by zero"))
	if !types.IsEvalError(err) {
		t.Errorf("should be an evaluate error: %v", err)
	}
	if got := types.TagOf(err); got != types.ZeroDivisionErrorTag {
		t.Errorf("expect to %s but got %s", types.ZeroDivisionErrorTag, got)
	}
}

func TestException(t *testing.T) {
	t.Parallel()

	err := &types.Error{
		Tag: types.UnexpectedCharacterErrorTag,
		Err: errors.New(`unexpected character 'a' at 4`),
		Extra: map[string]any{
			"character": "a",
			"position":  4,
		},
	}

	if got := err.Error(); got != `UnexpectedCharacterError: unexpected character 'a' at 4` {
		t.Errorf("unexpected message: %s", got)
	}

	expected := map[string]any{
		"tags":      []any{types.UnexpectedCharacterErrorTag},
		"message":   `unexpected character 'a' at 4`,
		"character": "a",
		"position":  4,
	}
	if diff := cmp.Diff(expected, err.Exception()); diff != "" {
		t.Errorf("unexpected exception payload (-want +got):\n%s", diff)
	}
}

func TestExceptionWithoutCause(t *testing.T) {
	t.Parallel()

	err := &types.Error{Tag: types.EmptyExpressionErrorTag}
	if got := err.Error(); got != "EmptyExpressionError" {
		t.Errorf("unexpected message: %s", got)
	}

	expected := map[string]any{
		"tags": []any{types.EmptyExpressionErrorTag},
	}
	if diff := cmp.Diff(expected, err.Exception()); diff != "" {
		t.Errorf("unexpected exception payload (-want +got):\n%s", diff)
	}
}
