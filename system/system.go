// Package system holds the model parameters of the system Hamiltonian of a one-dimensional spin chain,
// which is the time dependent transverse-field Ising model
//
//	H(t) = sum_{r=0}^{L-1} { hz_r(t) Z_r + hx_r(t) X_r } + sum_{r=0}^{L-2} J_r(t) Z_r Z_{r+1}
//
// where hz_r are the longitudinal fields, hx_r the transverse fields, and J_r the longitudinal couplers.
package system

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/sbc/scalar"
)

// ErrDimensionMismatch is returned when the input parameters imply different chain lengths.
var ErrDimensionMismatch = errors.New("incompatible dimensions")

// Model is an immutable set of model parameters.
type Model struct {
	l int

	zFields    []*scalar.Scalar
	xFields    []*scalar.Scalar
	zzCouplers []*scalar.Scalar

	// zEquiv[r] is the smallest site whose z field equals that of site r, and similarly for xEquiv and zzEquiv.
	zEquiv  []int
	xEquiv  []int
	zzEquiv []int
}

// New creates the model parameters of a chain.
// A nil or empty input means the corresponding term is absent.
// The chain length is len(zFields), len(xFields), or len(zzCouplers)+1, whichever inputs are present,
// and one if none are.
//
// Raw inputs that are equal share the same *scalar.Scalar.
func New(zFields, xFields, zzCouplers []scalar.Input) (*Model, error) {
	l, err := chainLength(zFields, xFields, zzCouplers)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	m := &Model{l: l}
	m.zFields = normalize(zFields, l)
	m.xFields = normalize(xFields, l)
	m.zzCouplers = normalize(zzCouplers, l-1)

	m.zEquiv = equivalence(m.zFields)
	m.xEquiv = equivalence(m.xFields)
	m.zzEquiv = equivalence(m.zzCouplers)
	return m, nil
}

func chainLength(zFields, xFields, zzCouplers []scalar.Input) (int, error) {
	ls := make([]int, 0, 3)
	if len(zFields) != 0 {
		ls = append(ls, len(zFields))
	}
	if len(xFields) != 0 {
		ls = append(ls, len(xFields))
	}
	if len(zzCouplers) != 0 {
		ls = append(ls, len(zzCouplers)+1)
	}
	slices.Sort(ls)
	ls = slices.Compact(ls)

	switch len(ls) {
	case 0:
		return 1, nil
	case 1:
		return ls[0], nil
	default:
		return -1, errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("z %d x %d zz %d", len(zFields), len(xFields), len(zzCouplers)))
	}
}

// normalize wraps raw parameters into scalars.
// Equal raw values share the scalar of their first occurrence.
func normalize(raw []scalar.Input, size int) []*scalar.Scalar {
	if len(raw) == 0 {
		raw = make([]scalar.Input, size)
		for i := range raw {
			raw[i] = scalar.Number(0)
		}
	}

	ss := make([]*scalar.Scalar, size)
	set := make([]bool, size)
	for i := range size {
		if set[i] {
			continue
		}
		ss[i] = scalar.Wrap(raw[i])
		for j := i + 1; j < size; j++ {
			if set[j] {
				continue
			}
			if scalar.EqualInput(raw[j], raw[i]) {
				ss[j] = ss[i]
				set[j] = true
			}
		}
	}
	return ss
}

func equivalence(ss []*scalar.Scalar) []int {
	eq := make([]int, len(ss))
	for i := range eq {
		eq[i] = i
	}
	for i := range ss {
		for j := i + 1; j < len(ss); j++ {
			if ss[j].Equal(ss[i]) {
				eq[j] = eq[i]
			}
		}
	}
	return eq
}

// L returns the number of sites.
func (m *Model) L() int { return m.l }

// ZFields returns the longitudinal fields, one per site.
func (m *Model) ZFields() []*scalar.Scalar { return slices.Clone(m.zFields) }

// XFields returns the transverse fields, one per site.
func (m *Model) XFields() []*scalar.Scalar { return slices.Clone(m.xFields) }

// ZZCouplers returns the longitudinal couplers, where the r-th coupler is between sites r and r+1.
func (m *Model) ZZCouplers() []*scalar.Scalar { return slices.Clone(m.zzCouplers) }

// XFieldEquivalence returns for each site the smallest site index with an equal transverse field.
func (m *Model) XFieldEquivalence() []int { return slices.Clone(m.xEquiv) }

// ZFieldEquivalence returns for each site the smallest site index with an equal longitudinal field.
func (m *Model) ZFieldEquivalence() []int { return slices.Clone(m.zEquiv) }

// ZZCouplerEquivalence returns for each coupler the smallest coupler index with an equal value.
func (m *Model) ZZCouplerEquivalence() []int { return slices.Clone(m.zzEquiv) }

// Eval returns the model parameters at time t.
// Each class of equal parameters is evaluated once.
func (m *Model) Eval(t float64) (z, x, zz []float64) {
	return eval(m.zFields, m.zEquiv, t), eval(m.xFields, m.xEquiv, t), eval(m.zzCouplers, m.zzEquiv, t)
}

func eval(ss []*scalar.Scalar, equiv []int, t float64) []float64 {
	vs := make([]float64, len(ss))
	for i, s := range ss {
		if j := equiv[i]; j != i {
			vs[i] = vs[j]
			continue
		}
		vs[i] = s.Eval(t)
	}
	return vs
}

func (m *Model) String() string {
	join := func(ss []*scalar.Scalar) string {
		strs := make([]string, 0, len(ss))
		for _, s := range ss {
			strs = append(strs, s.String())
		}
		return strings.Join(strs, " ")
	}
	return fmt.Sprintf("L %d z [%s] x [%s] zz [%s]", m.l, join(m.zFields), join(m.xFields), join(m.zzCouplers))
}
