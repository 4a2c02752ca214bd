// Package suite loads expression suite files (YAML or JSON documents
// listing expressions with optional expected values) and evaluates
// them with bounded parallelism.
package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-yaml"
	"github.com/karupanerura/exprcalc/internal/expression"
	"github.com/karupanerura/exprcalc/internal/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type suiteDef struct {
	Name  string    `json:"name" mapstructure:"name"`
	Cases []caseDef `json:"cases" mapstructure:"cases"`
}

type caseDef struct {
	Name       string `json:"name" mapstructure:"name"`
	Expression string `json:"expression" mapstructure:"expression"`
	Expected   any    `json:"expected" mapstructure:"expected"`
}

type Suite struct {
	Name  string
	Cases []*Case
}

type Case struct {
	Name     string
	Expr     *expression.Expr
	Expected *float64
}

func ParseSuiteYAML(r io.Reader) (*Suite, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseSuiteJSON(bytes.NewReader(jsonBytes))
}

func ParseSuiteJSON(r io.Reader) (*Suite, error) {
	jsonBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	var raw any
	if err := unmarshalJSONUseNumber(jsonBytes, &raw); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	raw, err = decodeJSONNumberRecursive(raw)
	if err != nil {
		return nil, err
	}

	def, err := decodeSuiteDef(raw)
	if err != nil {
		return nil, err
	}

	return def.compile()
}

func (d *suiteDef) compile() (*Suite, error) {
	s := &Suite{
		Name:  d.Name,
		Cases: make([]*Case, len(d.Cases)),
	}
	for i, c := range d.Cases {
		if c.Expression == "" {
			return nil, fmt.Errorf("cases[%d]: expression is required", i)
		}

		expr, err := expression.ParseExpr(c.Expression)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Expression, err)
		}

		expected, err := normalizeExpected(c.Expected)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Expression, err)
		}

		name := c.Name
		if name == "" {
			name = c.Expression
		}
		s.Cases[i] = &Case{
			Name:     name,
			Expr:     expr,
			Expected: expected,
		}
	}
	return s, nil
}

type Result struct {
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Value      *float64 `json:"value,omitempty"`
	Error      any      `json:"error,omitempty"`
	Pass       *bool    `json:"pass,omitempty"`
}

// tolerance is the relative error allowed when comparing a result
// against an expected value, per double-precision rounding behavior.
const tolerance = 1e-9

// Run evaluates every case and returns the results in case order.
// Cases are independent, so they run concurrently bounded by parallelism.
func (s *Suite) Run(parallelism int) []Result {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]Result, len(s.Cases))
	eg := errgroup.Group{}
	eg.SetLimit(parallelism)
	for i, c := range s.Cases {
		i, c := i, c
		eg.Go(func() error {
			results[i] = c.run()
			return nil
		})
	}
	_ = eg.Wait() // workers never fail, Wait is only for completion

	return results
}

func (c *Case) run() Result {
	result := Result{
		Name:       c.Name,
		Expression: c.Expr.Source,
	}

	value, err := c.Expr.Evaluate()
	if err != nil {
		var exception types.Exception
		if errors.As(err, &exception) {
			result.Error = exception.Exception()
		} else {
			result.Error = err.Error()
		}
		if c.Expected != nil {
			result.Pass = lo.ToPtr(false)
		}
		return result
	}

	result.Value = &value
	if c.Expected != nil {
		pass := math.Abs(value-*c.Expected) <= tolerance*math.Max(math.Abs(*c.Expected), 1)
		result.Pass = &pass
	}
	return result
}

func AllPassed(results []Result) bool {
	return lo.EveryBy(results, func(r Result) bool {
		return r.Error == nil && (r.Pass == nil || *r.Pass)
	})
}
