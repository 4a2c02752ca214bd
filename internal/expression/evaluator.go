package expression

// Evaluate walks the expression tree bottom-up and computes its value
// with float64 semantics. The only evaluation failure is division by
// zero, reported as a types.Error with ZeroDivisionErrorTag.
func (e *Expr) Evaluate() (float64, error) {
	return e.operation.evaluate()
}

// EvaluateString is the single entry point of the pipeline:
// source text -> tokens -> expression tree -> float64 value.
// Each call is independent; the first error aborts the remaining stages.
func EvaluateString(source string) (float64, error) {
	expr, err := ParseExpr(source)
	if err != nil {
		return 0, err
	}
	return expr.Evaluate()
}
