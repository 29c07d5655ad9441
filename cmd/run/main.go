package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fumin/sbc/exactdiag"
	"github.com/fumin/sbc/mat"
	"github.com/fumin/sbc/system"
)

const (
	fnameEigen      = "eig.csv"
	fnameDone       = "done.txt"
	fnameStatistics = "statistics.json"

	// Maximum chain length for exact diagonalization.
	maxL = 14
)

var (
	runDir     = flag.String("d", filepath.Join("runs", "sbc"), "run directory")
	configPath = flag.String("c", "model.yaml", "model parameters in YAML")
	t0         = flag.Float64("t0", 0, "first time")
	t1         = flag.Float64("t1", 1, "last time")
	nt         = flag.Int("nt", 11, "number of times")
	useDisk    = flag.Bool("disk", false, "build the Hamiltonian in a sqlite database")
	explicit   = flag.Bool("explicit", false, "write the Hamiltonian row by row")
)

type Statistics struct {
	t float64
	exactdiag.Statistics
}

func hamiltonian(m *system.Model, t float64) (*mat.COO, error) {
	switch {
	case *explicit:
		dir, err := os.MkdirTemp("", "")
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		defer os.RemoveAll(dir)
		if err := exactdiag.HamiltonianExplicit(dir, m, t); err != nil {
			return nil, errors.Wrap(err, "")
		}
		h, err := mat.ReadCOO(dir)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return h, nil
	case *useDisk:
		dir, err := os.MkdirTemp("", "")
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		defer os.RemoveAll(dir)
		h := mat.DiskM(filepath.Join(dir, "h.db"), [][]float64{{0}})
		defer h.Close()
		buf := mat.COOZeros(1, 1)
		exactdiag.Hamiltonian(h, buf, m, t)
		return h.COO(), nil
	default:
		h, buf := mat.COOZeros(1, 1), mat.COOZeros(1, 1)
		exactdiag.Hamiltonian(h, buf, m, t)
		return h, nil
	}
}

func solve(dir string, m *system.Model, t float64) error {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	vvs, err := readEig(dir)
	if err != nil {
		h, err := hamiltonian(m, t)
		if err != nil {
			return errors.Wrap(err, "")
		}
		vvs = h.Eigen()
		if err := writeEig(dir, vvs); err != nil {
			return errors.Wrap(err, "")
		}
	}

	stats, err := exactdiag.GetStatistics(m.L(), vvs)
	if err != nil {
		return errors.Wrap(err, "")
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameStatistics), b, 0644); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func readStatistics(dir string, t float64) (Statistics, error) {
	b, err := os.ReadFile(filepath.Join(dir, fnameStatistics))
	if err != nil {
		return Statistics{}, errors.Wrap(err, "")
	}
	s := Statistics{t: t}
	if err := json.Unmarshal(b, &s); err != nil {
		return Statistics{}, errors.Wrap(err, dir)
	}
	return s, nil
}

func readEig(dir string) ([]mat.ValVec, error) {
	f, err := os.Open(filepath.Join(dir, fnameEigen))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)

	record, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	vvs := make([]mat.ValVec, len(record))
	for j, s := range record {
		vvs[j].Val, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			vvs[j].Vec = append(vvs[j].Vec, v)
		}
	}
	// A file cut short at a row boundary has too few rows.
	for j, vv := range vvs {
		if len(vv.Vec) != len(vvs) {
			return nil, errors.Errorf("%d %d %d", j, len(vv.Vec), len(vvs))
		}
	}

	return vvs, nil
}

// writeEig writes eigenvalues in the first row, and eigenvectors in columns.
func writeEig(dir string, vvs []mat.ValVec) error {
	f, err := os.Create(filepath.Join(dir, fnameEigen))
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	row := make([]string, len(vvs))
	for j, vv := range vvs {
		row[j] = strconv.FormatFloat(vv.Val, 'g', -1, 64)
	}
	if err1 := w.Write(row); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for i := range len(vvs[0].Vec) {
		if err != nil {
			break
		}
		for j, vv := range vvs {
			row[j] = strconv.FormatFloat(vv.Vec[i], 'g', -1, 64)
		}
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func times() []float64 {
	if *nt <= 1 {
		return []float64{*t0}
	}
	ts := make([]float64, 0, *nt)
	for i := range *nt {
		ts = append(ts, *t0+(*t1-*t0)*float64(i)/float64(*nt-1))
	}
	return ts
}

// timeDir is the name of the directory holding the results at time t.
func timeDir(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	m, err := system.ReadConfig(*configPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if m.L() > maxL {
		return errors.Errorf("chain too long %d > %d", m.L(), maxL)
	}
	log.Printf("%s x equivalence %v", m, m.XFieldEquivalence())

	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	stats := make([]Statistics, 0)
	for _, t := range times() {
		dir := filepath.Join(*runDir, timeDir(t))
		if err := solve(dir, m, t); err != nil {
			return errors.Wrap(err, timeDir(t))
		}
		s, err := readStatistics(dir, t)
		if err != nil {
			return errors.Wrap(err, timeDir(t))
		}
		stats = append(stats, s)
		log.Printf("%f", t)
	}

	fmt.Printf("t,e0,e1,gap,m,binder\n")
	for _, s := range stats {
		e0, e1 := s.EigenValue[0], s.EigenValue[0]
		if len(s.EigenValue) > 1 {
			e1 = s.EigenValue[1]
		}
		fmt.Printf("%f,%f,%f,%f,%f,%f\n", s.t, e0, e1, e1-e0, s.Magnetization, s.BinderCumulant)
	}
	return nil
}
