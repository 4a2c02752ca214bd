package expression

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/karupanerura/exprcalc/internal/types"
)

// maxNestingDepth bounds the recursive descent so pathologically nested
// input reports an error instead of exhausting the call stack.
const maxNestingDepth = 512

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("EXPRCALC_EXPRESSION_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

type parser struct {
	source string
	debug  bool
}

func ParseExpr(source string) (*Expr, error) {
	p := &parser{source: source, debug: parserDebugLog}
	return p.parse()
}

func ParseExprWithDebugOutput(source string) (*Expr, error) {
	p := &parser{source: source, debug: true}
	return p.parse()
}

// parse implements the grammar:
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := NUMBER | '(' expression ')' | ('+' | '-') factor
//
// Operators at the same level fold left, so "8 - 3 - 2" is "(8-3)-2".
func (p *parser) parse() (*Expr, error) {
	lex := newLexer(p.source)
	if tok, err := lex.consume(); errors.Is(err, io.EOF) {
		return nil, &types.Error{
			Tag: types.EmptyExpressionErrorTag,
			Err: fmt.Errorf("empty expression is not allowed: expr=%q", p.source),
		}
	} else if err != nil {
		return nil, err
	} else {
		lex.push(tok)
	}

	op, err := p.parseExpression(lex, 0)
	if err != nil {
		return nil, err
	}
	if !lex.isCompleted() {
		tok, err := lex.consume()
		if err != nil {
			return nil, err
		}
		if p.debug {
			log.Println("not consumed token: ", p.extractLiteralString(tok))
		}
		return nil, &types.Error{
			Tag: types.TrailingTokenErrorTag,
			Err: fmt.Errorf("unexpected token %s after the expression at %d: expr=%q", p.extractLiteralString(tok), tok.BeginsPos(), p.source),
			Extra: map[string]any{
				"token":    p.extractLiteralString(tok),
				"position": tok.BeginsPos(),
			},
		}
	}

	if p.debug {
		pp.Println(p.source)
		pp.Println(op)
		log.Println(p.renderOperation(op))
	}

	return &Expr{
		Source:    p.source,
		operation: op,
	}, nil
}

func (p *parser) parseExpression(lex *lexer, depth int) (operation, error) {
	left, err := p.parseTerm(lex, depth)
	if err != nil {
		return nil, err
	}

	for {
		tok, err := lex.consume()
		if errors.Is(err, io.EOF) {
			return left, nil
		} else if err != nil {
			return nil, err
		}

		opTok, isOP := tok.(operatorToken)
		if !isOP {
			lex.push(tok)
			return left, nil
		}

		switch op := p.extractLiteralString(opTok); op {
		case "+", "-":
			if p.debug {
				log.Println("expression operator token: ", op)
			}
			right, err := p.parseTerm(lex, depth)
			if err != nil {
				return nil, err
			}
			left = &calculateBinaryOperation{operator: op, left: left, right: right}
		default:
			lex.push(tok)
			return left, nil
		}
	}
}

func (p *parser) parseTerm(lex *lexer, depth int) (operation, error) {
	left, err := p.parseFactor(lex, depth)
	if err != nil {
		return nil, err
	}

	for {
		tok, err := lex.consume()
		if errors.Is(err, io.EOF) {
			return left, nil
		} else if err != nil {
			return nil, err
		}

		opTok, isOP := tok.(operatorToken)
		if !isOP {
			lex.push(tok)
			return left, nil
		}

		switch op := p.extractLiteralString(opTok); op {
		case "*", "/":
			if p.debug {
				log.Println("term operator token: ", op)
			}
			right, err := p.parseFactor(lex, depth)
			if err != nil {
				return nil, err
			}
			left = &calculateBinaryOperation{operator: op, left: left, right: right}
		default:
			lex.push(tok)
			return left, nil
		}
	}
}

func (p *parser) parseFactor(lex *lexer, depth int) (operation, error) {
	if depth > maxNestingDepth {
		return nil, &types.Error{
			Tag: types.RecursionErrorTag,
			Err: fmt.Errorf("expression is nested deeper than %d levels: expr=%q", maxNestingDepth, p.source),
		}
	}

	tok, err := lex.consume()
	if errors.Is(err, io.EOF) {
		return nil, &types.Error{
			Tag: types.UnexpectedTokenErrorTag,
			Err: fmt.Errorf("unexpected end of expression: expr=%q", p.source),
			Extra: map[string]any{
				"token": "(end of expression)",
			},
		}
	} else if err != nil {
		return nil, err
	}
	if p.debug {
		log.Println("factor token: ", p.extractLiteralString(tok))
	}

	switch tok := tok.(type) {
	case numberToken:
		return &float64LiteralOperation{value: tok.value}, nil

	case operatorToken:
		switch op := p.extractLiteralString(tok); op {
		case "+", "-":
			// unary sign recurses into factor, so chains like "--5" are legal
			operand, err := p.parseFactor(lex, depth+1)
			if err != nil {
				return nil, err
			}
			return &calculateUnaryOperation{operator: op, value: operand}, nil

		case "(":
			inner, err := p.parseExpression(lex, depth+1)
			if err != nil {
				return nil, err
			}

			closeTok, err := lex.consume()
			if errors.Is(err, io.EOF) {
				return nil, &types.Error{
					Tag: types.UnmatchedParenthesisErrorTag,
					Err: fmt.Errorf("missing closing parenthesis for %d: expr=%q", tok.BeginsPos(), p.source),
					Extra: map[string]any{
						"position": tok.BeginsPos(),
					},
				}
			} else if err != nil {
				return nil, err
			}
			if p.debug {
				log.Println("close of paren token: ", p.extractLiteralString(closeTok))
			}

			if opTok, isOP := closeTok.(operatorToken); !isOP || p.extractLiteralString(opTok) != ")" {
				return nil, p.createInvalidTokenError(closeTok)
			}
			return inner, nil

		default:
			return nil, p.createInvalidTokenError(tok)
		}

	default:
		panic(fmt.Sprintf("unknown token type %T: expr=%q", tok, p.source))
	}
}

func (p *parser) extractLiteralString(t token) string {
	return p.source[t.BeginsPos():t.EndsPos()]
}

func (p *parser) createInvalidTokenError(t token) error {
	return &types.Error{
		Tag: types.UnexpectedTokenErrorTag,
		Err: fmt.Errorf("invalid token %s at %d: expr=%q", p.extractLiteralString(t), t.BeginsPos(), p.source),
		Extra: map[string]any{
			"token":    p.extractLiteralString(t),
			"position": t.BeginsPos(),
		},
	}
}

func (p *parser) renderOperation(op operation) string {
	switch op := op.(type) {
	case *float64LiteralOperation:
		return strconv.FormatFloat(op.value, 'g', -1, 64)
	case *calculateUnaryOperation:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(op.operator)
		b.WriteByte(' ')
		b.WriteString(p.renderOperation(op.value))
		b.WriteByte(')')
		return b.String()
	case *calculateBinaryOperation:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(op.operator)
		b.WriteByte(' ')
		b.WriteString(p.renderOperation(op.left))
		b.WriteByte(' ')
		b.WriteString(p.renderOperation(op.right))
		b.WriteByte(')')
		return b.String()
	default:
		panic(fmt.Sprintf("unknown operation type %T: expr=%q", op, p.source))
	}
}
