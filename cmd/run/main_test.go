package main

import (
	"flag"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/fumin/sbc/mat"
	"github.com/fumin/sbc/scalar"
	"github.com/fumin/sbc/system"
)

// TestTimes modifies the flags, so it does not run in parallel.
func TestTimes(t *testing.T) {
	tests := []struct {
		t0       float64
		t1       float64
		nt       int
		expected []float64
	}{
		{t0: 0, t1: 1, nt: 5, expected: []float64{0, 0.25, 0.5, 0.75, 1}},
		{t0: 2, t1: 1, nt: 3, expected: []float64{2, 1.5, 1}},
		{t0: 3, t1: 4, nt: 1, expected: []float64{3}},
		{t0: 3, t1: 4, nt: 0, expected: []float64{3}},
	}
	defer func(a, b float64, n int) { *t0, *t1, *nt = a, b, n }(*t0, *t1, *nt)
	for _, test := range tests {
		*t0, *t1, *nt = test.t0, test.t1, test.nt
		if ts := times(); !slices.Equal(ts, test.expected) {
			t.Fatalf("%v, expected %v", ts, test.expected)
		}
	}
}

func TestTimeDir(t *testing.T) {
	t.Parallel()
	if a, b := timeDir(0.1234567), timeDir(0.1234568); a == b {
		t.Fatalf("%s %s", a, b)
	}
	if d := timeDir(0.5); d != "0.5" {
		t.Fatalf("%s, expected %s", d, "0.5")
	}
}

func TestWriteReadEig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	vvs := []mat.ValVec{
		{Val: -1.5, Vec: []float64{0.6, 0.8}},
		{Val: 1. / 3, Vec: []float64{-0.8, 0.6}},
	}
	if err := writeEig(dir, vvs); err != nil {
		t.Fatalf("%+v", err)
	}
	got, err := readEig(dir)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(got) != len(vvs) {
		t.Fatalf("%d, expected %d", len(got), len(vvs))
	}
	for i, vv := range got {
		if vv.Val != vvs[i].Val || !slices.Equal(vv.Vec, vvs[i].Vec) {
			t.Fatalf("%d %#v, expected %#v", i, vv, vvs[i])
		}
	}
}

func TestReadEigTruncated(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing rows", content: "-1,1\n1,0\n"},
		{name: "partial row", content: "-1,1\n1,0\n0\n"},
		{name: "empty", content: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, fnameEigen), []byte(test.content), 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			if _, err := readEig(dir); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		z      []scalar.Input
		zz     []scalar.Input
		e0     float64
		binder float64
	}{
		{name: "ferromagnet", zz: scalar.Numbers(-1, -1), e0: -2, binder: 2. / 3},
		{name: "antiferromagnet", zz: scalar.Numbers(1), e0: -1, binder: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			m, err := system.New(test.z, nil, test.zz)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			dir := filepath.Join(t.TempDir(), timeDir(0))
			if err := solve(dir, m, 0); err != nil {
				t.Fatalf("%+v", err)
			}
			check := func() {
				s, err := readStatistics(dir, 0)
				if err != nil {
					t.Fatalf("%+v", err)
				}
				if math.Abs(s.EigenValue[0]-test.e0) > 1e-9 {
					t.Fatalf("%f, expected %f", s.EigenValue[0], test.e0)
				}
				if math.Abs(s.BinderCumulant-test.binder) > 1e-9 {
					t.Fatalf("%f, expected %f", s.BinderCumulant, test.binder)
				}
			}
			check()

			// Resume from an eigen file that was cut short.
			b, err := os.ReadFile(filepath.Join(dir, fnameEigen))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, fnameEigen), b[:len(b)/2], 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			for _, fname := range []string{fnameDone, fnameStatistics} {
				if err := os.Remove(filepath.Join(dir, fname)); err != nil {
					t.Fatalf("%+v", err)
				}
			}
			if err := solve(dir, m, 0); err != nil {
				t.Fatalf("%+v", err)
			}
			check()
			if _, err := readEig(dir); err != nil {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
