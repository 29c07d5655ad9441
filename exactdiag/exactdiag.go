// Package exactdiag builds the system Hamiltonian of a spin chain as a sparse matrix for exact diagonalization.
//
// Site 0 is the most significant bit of a basis index, and bit 0 is spin up, with Z eigenvalue +1.
package exactdiag

import (
	"log"
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/sbc/exactdiag/util"
	"github.com/fumin/sbc/mat"
	"github.com/fumin/sbc/system"
)

var (
	identity = mat.COOIdentity(2)
	pauliX   = mat.M(mat.PauliX)
	pauliZ   = mat.M(mat.PauliZ)
)

// Hamiltonian builds the Hamiltonian of m at time t into hamiltonian.
// buf is a scratch matrix.
func Hamiltonian(hamiltonian, buf mat.Matrix, m *system.Model, t float64) {
	l := m.L()
	hamiltonian.Zeros(1<<l, 1<<l)

	z, x, zz := m.Eval(t)
	for r := range l {
		if z[r] != 0 {
			term(hamiltonian, l, []int{r}, pauliZ, z[r], buf)
		}
		if x[r] != 0 {
			term(hamiltonian, l, []int{r}, pauliX, x[r], buf)
		}
		if r+1 < l && zz[r] != 0 {
			term(hamiltonian, l, []int{r, r + 1}, pauliZ, zz[r], buf)
		}
	}
}

// term adds c times the product of op acting on sites.
func term(hamiltonian mat.Matrix, l int, sites []int, op *mat.COO, c float64, buf mat.Matrix) {
	buf.Scalar(1)
	for r := range l {
		switch {
		case slices.Contains(sites, r):
			buf.Kron(op)
		default:
			buf.Kron(identity)
		}
	}

	hamiltonian.Add(c, buf)
}

// HamiltonianExplicit writes the Hamiltonian of m at time t to dir, one row at a time.
// This is much faster than Hamiltonian, and the matrix need not fit in memory.
func HamiltonianExplicit(dir string, m *system.Model, t float64) error {
	l := m.L()
	numStates := 1 << l
	if err := mat.WriteShape(dir, numStates, numStates); err != nil {
		return errors.Wrap(err, "")
	}
	w, err := mat.NewCOOWriter(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}

	z, x, zz := m.Eval(t)
	// spins is a reusable buffer for the Z eigenvalues of a basis state.
	spins := make([]float64, l)
	// flipped is a reusable buffer for the state with one spin flipped.
	flipped := make([]byte, l)
	vrcs := make([]vRowCol, 0, l+1)
	throttler := util.NewSkipThrottler(10 * time.Second)
Loop:
	for i, state := range bits(l) {
		for r, b := range state {
			spins[r] = float64(1 - 2*int(b))
		}

		vrcs = vrcs[:0]
		var diag float64
		for r := range l {
			diag += z[r] * spins[r]
			if r+1 < l {
				diag += zz[r] * spins[r] * spins[r+1]
			}
		}
		if diag != 0 {
			vrcs = append(vrcs, vRowCol{v: diag, row: i, col: i})
		}
		for r := range l {
			if x[r] == 0 {
				continue
			}
			copy(flipped, state)
			flipped[r] ^= 1
			vrcs = append(vrcs, vRowCol{v: x[r], row: i, col: bitIndex(flipped)})
		}

		slices.SortFunc(vrcs, func(a, b vRowCol) int { return a.col - b.col })
		for _, v := range vrcs {
			if err1 := w.Write(v.v, v.row, v.col); err1 != nil && err == nil {
				err = errors.Wrap(err1, "")
				break Loop
			}
		}

		if throttler.Ok() {
			log.Printf("%d/%d %.2f", i, numStates, float64(i)/float64(numStates))
		}
	}

	if err1 := w.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// pickSpinUp sets upState to the spins of state, flipped if necessary so that the majority of spins are up.
func pickSpinUp(upState []int8, state []byte) {
	ups := 0
	for _, b := range state {
		if b == 0 {
			ups++
		}
	}

	sign := int8(1)
	if ups < len(state)-ups {
		sign = -1
	}
	for i, b := range state {
		switch b {
		case 0:
			upState[i] = sign
		default:
			upState[i] = -sign
		}
	}
}

// Statistics are the spectrum and ground state observables of a chain.
type Statistics struct {
	EigenValue     []float64
	Magnetization  float64
	BinderCumulant float64
}

// GetStatistics returns the eigenvalues, and the magnetization per spin and Binder cumulant of the ground state of a chain of l sites.
// The Binder cumulant is zero when the ground state has no magnetization at all, as in an antiferromagnet.
func GetStatistics(l int, vvs []mat.ValVec) (Statistics, error) {
	if len(vvs) == 0 {
		return Statistics{}, errors.Errorf("no eigenvectors")
	}
	var stats Statistics
	for _, vv := range vvs {
		stats.EigenValue = append(stats.EigenValue, vv.Val)
	}
	ground := vvs[0]
	if len(ground.Vec) != 1<<l {
		return Statistics{}, errors.Errorf("%d %d", len(ground.Vec), 1<<l)
	}
	// spinUpBasis is the basis where the majority of spins are up.
	spinUpBasis := make([]int8, l)
	var totalProb float64
	var m2 float64
	for i, fullBasis := range bits(l) {
		pickSpinUp(spinUpBasis, fullBasis)
		amplitude := ground.Vec[i]
		probability := amplitude * amplitude

		var basisM float64
		for _, spin := range spinUpBasis {
			basisM += float64(spin)
		}

		totalProb += probability
		stats.Magnetization += probability * basisM
		stats.BinderCumulant += probability * math.Pow(basisM, 4)
		m2 += probability * math.Pow(basisM, 2)
	}
	if math.Abs(totalProb-1) > 1e-3 {
		return Statistics{}, errors.Errorf("%f", totalProb)
	}

	stats.Magnetization /= float64(l)
	if m2 == 0 {
		stats.BinderCumulant = 0
		return stats, nil
	}
	stats.BinderCumulant /= (m2 * m2)
	stats.BinderCumulant = 1 - stats.BinderCumulant/3
	return stats, nil
}

func indexBit(state []byte, i int) {
	n := len(state)
	for j := range n {
		state[j] = byte((i >> (n - 1 - j)) & 1)
	}
}

func bits(n int) func(yield func(int, []byte) bool) {
	state := make([]byte, n)
	return func(yield func(int, []byte) bool) {
		numStates := 1 << n
		for i := range numStates {
			indexBit(state, i)
			if !yield(i, state) {
				return
			}
		}
	}
}

func bitIndex(state []byte) int {
	idx := 0
	for i := len(state) - 1; i >= 0; i-- {
		if state[i] == 1 {
			idx += 1 << (len(state) - 1 - i)
		}
	}
	return idx
}

type vRowCol struct {
	v   float64
	row int
	col int
}
