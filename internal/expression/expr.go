package expression

// Expr is a parsed arithmetic expression. It holds no shared state, so
// a single Expr may be evaluated repeatedly and concurrently.
type Expr struct {
	Source string
	operation
}

func (e *Expr) String() string {
	return e.Source
}
