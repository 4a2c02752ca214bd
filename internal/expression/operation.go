package expression

import (
	"fmt"

	"github.com/karupanerura/exprcalc/internal/types"
)

type operation interface {
	evaluate() (float64, error)
}

type float64LiteralOperation struct {
	value float64
}

func (s *float64LiteralOperation) evaluate() (float64, error) {
	return s.value, nil
}

type calculateUnaryOperation struct {
	operator string
	value    operation
}

func (s *calculateUnaryOperation) evaluate() (float64, error) {
	value, err := s.value.evaluate()
	if err != nil {
		return 0, fmt.Errorf("value of unary operator %q: %w", s.operator, err)
	}

	switch s.operator {
	case "+":
		return value, nil
	case "-":
		return -value, nil
	default:
		panic(fmt.Sprintf("unknown unary operator: %q", s.operator))
	}
}

type calculateBinaryOperation struct {
	operator string
	left     operation
	right    operation
}

func (s *calculateBinaryOperation) evaluate() (float64, error) {
	// left before right, required for deterministic error reporting
	left, err := s.left.evaluate()
	if err != nil {
		return 0, fmt.Errorf("left of operator %q: %w", s.operator, err)
	}

	right, err := s.right.evaluate()
	if err != nil {
		return 0, fmt.Errorf("right of operator %q: %w", s.operator, err)
	}

	switch s.operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		// division by zero is a hard error, never an IEEE Inf/NaN result
		if right == 0.0 {
			return 0, &types.Error{
				Tag: types.ZeroDivisionErrorTag,
				Err: fmt.Errorf("division by zero: left=%v", left),
			}
		}
		return left / right, nil
	default:
		panic(fmt.Sprintf("unknown binary operator: %q", s.operator))
	}
}
