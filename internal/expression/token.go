package expression

type token interface {
	BeginsPos() int
	EndsPos() int
}

type rangeToken struct {
	beginsPos, endsPos int
}

func (t rangeToken) BeginsPos() int {
	return t.beginsPos
}

func (t rangeToken) EndsPos() int {
	return t.endsPos
}

type numberToken struct {
	rangeToken
	value float64
}

type operatorToken struct {
	rangeToken
}
