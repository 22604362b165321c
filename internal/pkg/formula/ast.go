package formula

import (
	"fmt"
	"math"
)

type node interface {
	eval(resolve Resolver) (float64, error)
	collect(refs map[string]struct{})
}

type numberNode struct {
	value float64
}

func (n numberNode) eval(Resolver) (float64, error) { return n.value, nil }
func (n numberNode) collect(map[string]struct{}) {}

type refNode struct {
	slug string
}

func (n refNode) eval(resolve Resolver) (float64, error) {
	v, ok := resolve(n.slug)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingReference, n.slug)
	}
	return v, nil
}

func (n refNode) collect(refs map[string]struct{}) { refs[n.slug] = struct{}{} }

type negNode struct {
	operand node
}

func (n negNode) eval(resolve Resolver) (float64, error) {
	v, err := n.operand.eval(resolve)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n negNode) collect(refs map[string]struct{}) { n.operand.collect(refs) }

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(resolve Resolver) (float64, error) {
	l, err := n.left.eval(resolve)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(resolve)
	if err != nil {
		return 0, err
	}

	var res float64
	switch n.op {
	case '+':
		res = l + r
	case '-':
		res = l - r
	case '*':
		res = l * r
	case '/':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		res = l / r
	default:
		return 0, fmt.Errorf("%w: operator %q", ErrSyntax, n.op)
	}

	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, ErrNotFinite
	}
	return res, nil
}

func (n binaryNode) collect(refs map[string]struct{}) {
	n.left.collect(refs)
	n.right.collect(refs)
}
