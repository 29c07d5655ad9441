// Package mps builds the matrix product operators of spin chain Hamiltonians.
//
// An MPO tensor has axes (left, right, up, down).
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package mps

import (
	"github.com/fumin/tensor"

	"github.com/fumin/sbc/system"
)

var (
	zero = [][]complex64{
		{0, 0},
		{0, 0},
	}
	identity = [][]complex64{
		{1, 0},
		{0, 1},
	}
	pauliX = [][]complex64{
		{0, 1},
		{1, 0},
	}
	pauliZ = [][]complex64{
		{1, 0},
		{0, -1},
	}
)

// MagnetizationZ returns the MPO of the total Z magnetization of a chain of l sites.
func MagnetizationZ(l int) []*tensor.Dense {
	w := tensor.T4([][][][]complex64{
		{identity, zero},
		{pauliZ, identity},
	})
	ws := make([]*tensor.Dense, 0, l)
	for range l {
		ws = append(ws, w)
	}
	return newMPO(ws)
}

// Hamiltonian returns the MPO of the Hamiltonian of m at time t.
// Site r is the lower triangular operator valued matrix
//
//	I                 0        0
//	Z                 0        0
//	hz Z + hx X       J_r Z    I
//
// where J_r couples sites r and r+1.
func Hamiltonian(m *system.Model, t float64) []*tensor.Dense {
	z, x, zz := m.Eval(t)
	ws := make([]*tensor.Dense, 0, m.L())
	for r := range m.L() {
		var j float64
		if r < len(zz) {
			j = zz[r]
		}
		onsite := add(mul(z[r], pauliZ), mul(x[r], pauliX))
		w := tensor.T4([][][][]complex64{
			{identity, zero, zero},
			{pauliZ, zero, zero},
			{onsite, mul(j, pauliZ), identity},
		})
		ws = append(ws, w)
	}
	return newMPO(ws)
}

func mul(c float64, x [][]complex64) [][]complex64 {
	return tensor.T2(x).Mul(complex(float32(c), 0)).ToSlice2()
}

func add(a, b [][]complex64) [][]complex64 {
	c := make([][]complex64, len(a))
	for i := range a {
		c[i] = make([]complex64, len(a[i]))
		for j := range a[i] {
			c[i][j] = a[i][j] + b[i][j]
		}
	}
	return c
}

// newMPO keeps the last row of the first site, and the first column of the last site.
func newMPO(ws []*tensor.Dense) []*tensor.Dense {
	mpo := make([]*tensor.Dense, 0, len(ws))
	first, last := ws[0], ws[len(ws)-1]

	if len(ws) == 1 {
		d0, _, d2, d3 := shape(first)
		mpo = append(mpo, first.Slice([][2]int{{d0 - 1, d0}, {0, 1}, {0, d2}, {0, d3}}))
		return mpo
	}

	d0, d1, d2, d3 := shape(first)
	mpo = append(mpo, first.Slice([][2]int{{d0 - 1, d0}, {0, d1}, {0, d2}, {0, d3}}))

	mpo = append(mpo, ws[1:len(ws)-1]...)

	d0, _, d2, d3 = shape(last)
	mpo = append(mpo, last.Slice([][2]int{{0, d0}, {0, 1}, {0, d2}, {0, d3}}))

	return mpo
}

func shape(w *tensor.Dense) (int, int, int, int) {
	s := w.Shape()
	return s[0], s[1], s[2], s[3]
}
