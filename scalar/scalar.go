// Package scalar implements real valued model parameters that may vary with time.
package scalar

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

type kind int

const (
	constant kind = iota
	function
	sampled
)

// Scalar is an immutable function of time.
type Scalar struct {
	kind kind

	c  float64
	fn func(float64) float64

	ts []float64
	vs []float64
	pl *interp.PiecewiseLinear
}

// Const returns a time independent scalar.
func Const(c float64) *Scalar {
	return &Scalar{kind: constant, c: c}
}

// Func returns a scalar whose value at time t is fn(t).
func Func(fn func(t float64) float64) *Scalar {
	return &Scalar{kind: function, fn: fn}
}

// Sampled returns a scalar that linearly interpolates the samples vs taken at times ts.
// Outside of [ts[0], ts[len(ts)-1]] the nearest sample is returned.
func Sampled(ts, vs []float64) (*Scalar, error) {
	if len(ts) != len(vs) {
		return nil, errors.Errorf("%d %d", len(ts), len(vs))
	}
	if len(ts) < 2 {
		return nil, errors.Errorf("too few samples %d", len(ts))
	}
	for i := 1; i < len(ts); i++ {
		if !(ts[i] > ts[i-1]) {
			return nil, errors.Errorf("times not strictly increasing at %d: %f %f", i, ts[i-1], ts[i])
		}
	}

	s := &Scalar{kind: sampled, ts: append([]float64(nil), ts...), vs: append([]float64(nil), vs...)}
	s.pl = &interp.PiecewiseLinear{}
	if err := s.pl.Fit(s.ts, s.vs); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

// Eval returns the value at time t.
func (s *Scalar) Eval(t float64) float64 {
	switch s.kind {
	case constant:
		return s.c
	case function:
		return s.fn(t)
	default:
		switch {
		case t <= s.ts[0]:
			return s.vs[0]
		case t >= s.ts[len(s.ts)-1]:
			return s.vs[len(s.vs)-1]
		}
		return s.pl.Predict(t)
	}
}

// IsConst reports whether s does not depend on time.
func (s *Scalar) IsConst() bool { return s.kind == constant }

// Equal reports whether s and o have the same value at all times.
// Scalars built from functions are only equal to themselves.
func (s *Scalar) Equal(o *Scalar) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || s.kind != o.kind {
		return false
	}
	switch s.kind {
	case constant:
		return s.c == o.c
	case sampled:
		return floats.Equal(s.ts, o.ts) && floats.Equal(s.vs, o.vs)
	default:
		return false
	}
}

func (s *Scalar) String() string {
	switch s.kind {
	case constant:
		return strconv.FormatFloat(s.c, 'g', -1, 64)
	case function:
		return fmt.Sprintf("func(%p)", s)
	default:
		return fmt.Sprintf("sampled(%v, %v)", s.ts, s.vs)
	}
}

// Input is a raw model parameter, either a Number or a *Scalar.
type Input interface {
	input()
}

// Number is a time independent raw parameter.
type Number float64

func (Number) input()  {}
func (*Scalar) input() {}

// Numbers converts vs to raw parameters.
func Numbers(vs ...float64) []Input {
	ins := make([]Input, 0, len(vs))
	for _, v := range vs {
		ins = append(ins, Number(v))
	}
	return ins
}

// Wrap converts a raw parameter to a scalar.
// Scalars are returned as is, and nil is treated as zero.
func Wrap(in Input) *Scalar {
	switch in := canonical(in).(type) {
	case *Scalar:
		return in
	case Number:
		return Const(float64(in))
	default:
		panic(fmt.Sprintf("%#v", in))
	}
}

// EqualInput reports whether two raw parameters are equal by value.
// A Number is never equal to a *Scalar.
func EqualInput(a, b Input) bool {
	a, b = canonical(a), canonical(b)
	switch a := a.(type) {
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case *Scalar:
		bs, ok := b.(*Scalar)
		return ok && a.Equal(bs)
	default:
		return false
	}
}

func canonical(in Input) Input {
	if in == nil {
		return Number(0)
	}
	if s, ok := in.(*Scalar); ok && s == nil {
		return Number(0)
	}
	return in
}
