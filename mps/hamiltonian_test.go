package mps_test

import (
	"fmt"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/fumin/tensor"

	"github.com/fumin/sbc/exactdiag"
	"github.com/fumin/sbc/mat"
	"github.com/fumin/sbc/mps"
	"github.com/fumin/sbc/scalar"
	"github.com/fumin/sbc/system"
)

// dense multiplies out the MPO into a full matrix.
func dense(mpo []*tensor.Dense) [][]complex128 {
	l := len(mpo)
	n := 1 << l
	h := make([][]complex128, n)
	for i := range n {
		h[i] = make([]complex128, n)
		for j := range n {
			// vec is the contraction of sites up to r, indexed by the right bond.
			vec := []complex128{1}
			for r, w := range mpo {
				s := w.Shape()
				up, down := (i>>(l-1-r))&1, (j>>(l-1-r))&1
				next := make([]complex128, s[1])
				for a := range s[0] {
					for b := range s[1] {
						next[b] += vec[a] * complex128(w.At(a, b, up, down))
					}
				}
				vec = next
			}
			h[i][j] = vec[0]
		}
	}
	return h
}

func TestHamiltonian(t *testing.T) {
	t.Parallel()
	ramp := scalar.Func(func(t float64) float64 { return t / 2 })
	tests := []struct {
		z  []scalar.Input
		x  []scalar.Input
		zz []scalar.Input
		t  float64
	}{
		{z: scalar.Numbers(1), x: scalar.Numbers(-0.5), t: 0},
		{z: scalar.Numbers(1, -1), x: scalar.Numbers(0.5, 0.5), zz: scalar.Numbers(2), t: 0},
		{z: scalar.Numbers(0.5, 0, -2, 1), x: []scalar.Input{ramp, scalar.Number(1), ramp, scalar.Number(0)}, zz: scalar.Numbers(-1, 0.25, -1), t: 3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %d %d %f", len(test.z), len(test.x), len(test.zz), test.t), func(t *testing.T) {
			t.Parallel()
			m, err := system.New(test.z, test.x, test.zz)
			if err != nil {
				t.Fatalf("%+v", err)
			}

			mpo := mps.Hamiltonian(m, test.t)
			if len(mpo) != m.L() {
				t.Fatalf("%d, expected %d", len(mpo), m.L())
			}
			if s := mpo[0].Shape(); s[0] != 1 {
				t.Fatalf("%#v", s)
			}
			if s := mpo[len(mpo)-1].Shape(); s[1] != 1 {
				t.Fatalf("%#v", s)
			}

			h, buf := mat.COOZeros(1, 1), mat.COOZeros(1, 1)
			exactdiag.Hamiltonian(h, buf, m, test.t)
			expected := h.Dense()

			got := dense(mpo)
			for i, row := range expected {
				for j, v := range row {
					if cmplx.Abs(got[i][j]-complex(v, 0)) > 1e-6 {
						t.Fatalf("%d %d %v, expected %f", i, j, got[i][j], v)
					}
				}
			}
		})
	}
}

func TestMagnetizationZ(t *testing.T) {
	t.Parallel()
	tests := []struct {
		l    int
		diag []float64
	}{
		{l: 1, diag: []float64{1, -1}},
		{l: 2, diag: []float64{2, 0, 0, -2}},
		{l: 3, diag: []float64{3, 1, 1, -1, 1, -1, -1, -3}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.l), func(t *testing.T) {
			t.Parallel()
			got := dense(mps.MagnetizationZ(test.l))
			diag := make([]float64, 0, len(got))
			for i, row := range got {
				for j, v := range row {
					if i != j && v != 0 {
						t.Fatalf("%d %d %v", i, j, v)
					}
				}
				diag = append(diag, real(row[i]))
			}
			if !slices.Equal(diag, test.diag) {
				t.Fatalf("%v, expected %v", diag, test.diag)
			}
		})
	}
}
