// Package mat implements the sparse real matrices used to hold spin chain Hamiltonians.
package mat

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"
)

var (
	PauliX = [][]float64{
		{0, 1},
		{1, 0},
	}
	PauliZ = [][]float64{
		{1, 0},
		{0, -1},
	}
)

type Matrix interface {
	Zeros(int, int)
	Scalar(float64)
	Rows() int
	Cols() int

	Add(float64, Matrix)
	Kron(*COO)
	COO() *COO

	WriteCOO(string) error
}

type entry struct {
	v   float64
	row int
	col int
}

// COO is a sparse matrix in coordinate format.
// Data is sorted in row major order and holds no zeros.
type COO struct {
	rows int
	cols int
	Data []entry
}

func M(dense [][]float64) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]entry, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, entry{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]entry, 0)}
}

func COOIdentity(rows int) *COO {
	m := COOZeros(rows, rows)
	for i := range rows {
		m.Data = append(m.Data, entry{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

func (m *COO) Scalar(v float64) {
	m.Zeros(1, 1)
	if v != 0 {
		m.Data = append(m.Data, entry{v: v, row: 0, col: 0})
	}
}

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	return slices.Equal(a.Data, b.Data)
}

// Slice returns the submatrix in rows [yBound[0], yBound[1]) and columns [xBound[0], xBound[1]).
// Negative bounds count from the end.
func (m *COO) Slice(yBound, xBound [2]int) *COO {
	for i := range 2 {
		if yBound[i] < 0 {
			yBound[i] += m.rows
		}
		if xBound[i] < 0 {
			xBound[i] += m.cols
		}
	}

	s := COOZeros(yBound[1]-yBound[0], xBound[1]-xBound[0])
	for _, v := range m.Data {
		if v.row < yBound[0] {
			continue
		}
		if v.row >= yBound[1] {
			break
		}
		if v.col < xBound[0] || v.col >= xBound[1] {
			continue
		}
		s.Data = append(s.Data, entry{v: v.v, row: v.row - yBound[0], col: v.col - xBound[0]})
	}
	return s
}

// Add performs a += c*b.
func (a *COO) Add(c float64, bMatrix Matrix) {
	b := bMatrix.COO()
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("%dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	bm := make(map[[2]int]float64, len(b.Data))
	for _, v := range b.Data {
		bm[[2]int{v.row, v.col}] = v.v
	}
	for i, av := range a.Data {
		yx := [2]int{av.row, av.col}
		a.Data[i].v = av.v + c*bm[yx]
		delete(bm, yx)
	}
	for yx, bv := range bm {
		a.Data = append(a.Data, entry{v: c * bv, row: yx[0], col: yx[1]})
	}

	a.Data = slices.DeleteFunc(a.Data, func(v entry) bool { return v.v == 0 })
	slices.SortFunc(a.Data, rowMajor)
}

// Kron sets a to the Kronecker product of a and b.
func (a *COO) Kron(b *COO) {
	data := make([]entry, 0, len(a.Data)*len(b.Data))
	for _, av := range a.Data {
		for _, bv := range b.Data {
			v := av.v * bv.v
			if v == 0 {
				continue
			}
			data = append(data, entry{v: v, row: av.row*b.rows + bv.row, col: av.col*b.cols + bv.col})
		}
	}
	slices.SortFunc(data, rowMajor)

	a.rows, a.cols = a.rows*b.rows, a.cols*b.cols
	a.Data = data
}

func (m *COO) COO() *COO {
	return m
}

func (m *COO) Dense() [][]float64 {
	dense := make([][]float64, m.rows)
	for i := range dense {
		dense[i] = make([]float64, m.cols)
	}
	for _, v := range m.Data {
		dense[v.row][v.col] = v.v
	}
	return dense
}

func (m *COO) WriteCOO(dir string) error {
	if err := WriteShape(dir, m.rows, m.cols); err != nil {
		return errors.Wrap(err, "")
	}

	w, err := NewCOOWriter(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, v := range m.Data {
		if err1 := w.Write(v.v, v.row, v.col); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}
	if err1 := w.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// WriteShape writes the shape file of a COO directory.
func WriteShape(dir string, rows, cols int) error {
	shapePath := filepath.Join(dir, FnameShape)
	if err := os.WriteFile(shapePath, []byte(fmt.Sprintf("%d,%d", rows, cols)), 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// COOWriter writes matrix entries in row major order to a COO directory.
// A value or row that is the same as that of the previous entry is left empty.
type COOWriter struct {
	f *os.File
	w *csv.Writer

	prev entry
}

// NewCOOWriter creates a writer for the COO file in dir.
func NewCOOWriter(dir string) (*COOWriter, error) {
	f, err := os.Create(filepath.Join(dir, FnameCOO))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	w := &COOWriter{f: f, w: csv.NewWriter(f), prev: entry{row: -1, col: -1}}
	return w, nil
}

// Write appends the entry v at row, col.
func (w *COOWriter) Write(v float64, row, col int) error {
	var vStr string
	if v != w.prev.v || w.prev.row == -1 {
		vStr = strconv.FormatFloat(v, 'g', -1, 64)
	}
	var rowStr string
	if row != w.prev.row {
		rowStr = strconv.Itoa(row)
	}
	if err := w.w.Write([]string{vStr, rowStr, strconv.Itoa(col)}); err != nil {
		return errors.Wrap(err, "")
	}
	w.prev = entry{v: v, row: row, col: col}
	return nil
}

// Close flushes the entries and closes the file.
func (w *COOWriter) Close() error {
	var err error
	w.w.Flush()
	if err1 := w.w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := w.f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

type COOReader struct {
	f *os.File
	r *csv.Reader
	i int

	prev entry
}

func NewCOOReader(dir string) (*COOReader, error) {
	r := &COOReader{i: -1}

	var err error
	r.f, err = os.Open(filepath.Join(dir, FnameCOO))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	r.r = csv.NewReader(r.f)
	r.r.FieldsPerRecord = 3
	return r, nil
}

func (r *COOReader) Close() error {
	return r.f.Close()
}

func (r *COOReader) Read() (entry, error) {
	r.i++
	record, err := r.r.Read()
	if err == io.EOF {
		return entry{}, io.EOF
	}
	if err != nil {
		return entry{}, errors.Wrap(err, fmt.Sprintf("%d", r.i))
	}

	var e entry
	switch {
	case record[0] == "":
		e.v = r.prev.v
	default:
		e.v, err = strconv.ParseFloat(record[0], 64)
		if err != nil {
			return entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}

	switch {
	case record[1] == "":
		e.row = r.prev.row
	default:
		e.row, err = strconv.Atoi(record[1])
		if err != nil {
			return entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}

	e.col, err = strconv.Atoi(record[2])
	if err != nil {
		return entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
	}

	r.prev = e
	return e, nil
}

func ReadCOO(dir string) (*COO, error) {
	rows, cols, err := readShape(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := COOZeros(rows, cols)

	r, err := NewCOOReader(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer r.Close()
	for {
		v, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		m.Data = append(m.Data, v)
	}

	return m, nil
}

func readShape(dir string) (int, int, error) {
	f, err := os.Open(filepath.Join(dir, FnameShape))
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	if len(records) == 0 {
		return -1, -1, errors.Errorf("empty")
	}
	row := records[0]

	if len(row) != 2 {
		return -1, -1, errors.Errorf("%#v", row)
	}
	i, err := strconv.Atoi(row[0])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	j, err := strconv.Atoi(row[1])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}

	return i, j, nil
}

func (m *COO) String() string {
	dense := m.Dense()
	lines := make([]string, 0, len(dense))
	for _, row := range dense {
		cs := make([]string, 0, len(row))
		for _, v := range row {
			cs = append(cs, format(v))
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

type ValVec struct {
	Val float64
	Vec []float64
}

// Eigen returns the eigenvalues and eigenvectors of a symmetric matrix in ascending order of eigenvalues.
func (m *COO) Eigen() []ValVec {
	vvs, err := m.eigen()
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return vvs
}

func (m *COO) eigen() ([]ValVec, error) {
	if m.rows != m.cols {
		return nil, errors.Errorf("%d %d", m.rows, m.cols)
	}
	dm := make(map[[2]int]float64, len(m.Data))
	for _, v := range m.Data {
		dm[[2]int{v.row, v.col}] = v.v
	}
	sym := mat.NewSymDense(m.rows, nil)
	for _, v := range m.Data {
		if dm[[2]int{v.col, v.row}] != v.v {
			return nil, errors.Errorf("not symmetric at %d %d", v.row, v.col)
		}
		sym.SetSym(v.row, v.col, v.v)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("eigen factorization failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	vvs := make([]ValVec, 0, len(vals))
	for i, v := range vals {
		vec := make([]float64, m.rows)
		mat.Col(vec, i, &vecs)
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortStableFunc(vvs, func(a, b ValVec) int { return cmp.Compare(a.Val, b.Val) })
	return vvs, nil
}

func rowMajor(a, b entry) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
