package expression

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/karupanerura/exprcalc/internal/types"
)

type lexer struct {
	source    string
	index     int
	lastIndex int
	stack     []lexerContext
	buf       []token
}

func newLexer(source string) *lexer {
	return &lexer{
		source:    source,
		index:     0,
		lastIndex: len(source) - 1,
		stack: []lexerContext{
			{kind: defaultLexerContext},
		},
		buf: nil,
	}
}

type lexerContextKind int

const (
	defaultLexerContext lexerContextKind = iota
	numericLiteralLexerContext
)

type lexerContext struct {
	kind           lexerContextKind
	rangeBeginsIdx int
}

func (l *lexer) isCompleted() bool {
	return l.index == len(l.source) && len(l.buf) == 0
}

func (l *lexer) push(t token) {
	l.buf = append(l.buf, t)
}

func (l *lexer) consume() (token, error) {
	if len(l.stack) == 0 {
		panic(fmt.Sprintf("should not reach here: source=%s", l.source))
	}
	if len(l.buf) != 0 {
		tok := l.buf[len(l.buf)-1]
		l.buf = l.buf[:len(l.buf)-1]
		return tok, nil
	}

	for l.index != len(l.source) {
		context := l.stack[len(l.stack)-1]
		switch context.kind {
		case defaultLexerContext:
			switch c := l.source[l.index]; c {
			case ' ', '\t', '\n':
				l.index++ // just skip white spaces
			case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.':
				l.stack = append(l.stack, lexerContext{kind: numericLiteralLexerContext, rangeBeginsIdx: l.index})
				l.index++
			case '+', '-', '*', '/', '(', ')':
				l.index++
				return operatorToken{rangeToken{beginsPos: l.index - 1, endsPos: l.index}}, nil
			default:
				return nil, &types.Error{
					Tag: types.UnexpectedCharacterErrorTag,
					Err: fmt.Errorf("unexpected character %q at %d", c, l.index),
					Extra: map[string]any{
						"character": string(c),
						"position":  l.index,
					},
				}
			}

		case numericLiteralLexerContext:
			if c := l.source[l.index]; c == '.' || ('0' <= c && c <= '9') {
				l.index++
				if l.index <= l.lastIndex {
					continue
				}
			}

			l.stack = l.stack[:len(l.stack)-1]
			return l.completeNumericLiteral(context.rangeBeginsIdx)
		}
	}

	switch len(l.stack) {
	case 1:
		if l.stack[0].kind != defaultLexerContext {
			panic(fmt.Sprintf("should not reach here: source=%s", l.source))
		}
		return nil, io.EOF
	case 2:
		// the numeric literal runs to the end of the source
		context := l.stack[len(l.stack)-1]
		l.stack = l.stack[:len(l.stack)-1]
		return l.completeNumericLiteral(context.rangeBeginsIdx)
	default:
		panic(fmt.Sprintf("should not reach here: source=%s", l.source))
	}
}

// completeNumericLiteral cuts the digits/dots run that ends at l.index
// into a number token. The run is maximal, so a malformed literal like
// "1.2.3" arrives here as a whole and is rejected as one unit.
func (l *lexer) completeNumericLiteral(beginsIdx int) (token, error) {
	text := l.source[beginsIdx:l.index]
	if strings.Count(text, ".") > 1 {
		return nil, &types.Error{
			Tag: types.InvalidNumberErrorTag,
			Err: fmt.Errorf("invalid numeric literal %q at %d", text, beginsIdx),
			Extra: map[string]any{
				"text":     text,
				"position": beginsIdx,
			},
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &types.Error{
			Tag: types.InvalidNumberErrorTag,
			Err: fmt.Errorf("invalid numeric literal %q at %d", text, beginsIdx),
			Extra: map[string]any{
				"text":     text,
				"position": beginsIdx,
			},
		}
	}

	return numberToken{rangeToken: rangeToken{beginsPos: beginsIdx, endsPos: l.index}, value: value}, nil
}
