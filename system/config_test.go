package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fumin/sbc/scalar"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()
	doc := `
z_fields: [0.5, 0.5, 0.5]
x_fields:
  - 1
  - {times: [0, 1], values: [0, 2]}
  - 1
zz_couplers: [-1, -1]
`
	m, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 3, m.L())

	zs := m.ZFields()
	require.Same(t, zs[0], zs[2])
	require.Equal(t, []int{0, 0, 0}, m.ZFieldEquivalence())

	xs := m.XFields()
	require.Same(t, xs[0], xs[2])
	require.False(t, xs[1].IsConst())
	require.InDelta(t, 1.0, xs[1].Eval(0.5), 1e-12)
	require.Equal(t, []int{0, 1, 0}, m.XFieldEquivalence())

	require.Equal(t, []int{0, 0}, m.ZZCouplerEquivalence())
}

func TestParseConfigSampledSharing(t *testing.T) {
	t.Parallel()
	doc := `
x_fields:
  - {times: [0, 1], values: [0, 2]}
  - {times: [0, 1], values: [0, 2]}
`
	m, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	xs := m.XFields()
	require.Same(t, xs[0], xs[1])
	require.Equal(t, []int{0, 0}, m.XFieldEquivalence())
	require.Len(t, m.ZZCouplers(), 1)
	require.True(t, m.ZZCouplers()[0].Equal(scalar.Const(0)))
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		doc      string
		mismatch bool
	}{
		{name: "mismatch", doc: "z_fields: [1, 2, 3]\nzz_couplers: [1]\n", mismatch: true},
		{name: "samples", doc: "x_fields:\n  - {times: [0], values: [1]}\n"},
		{name: "sequence", doc: "x_fields:\n  - [1, 2]\n"},
		{name: "number", doc: "x_fields: [abc]\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseConfig([]byte(test.doc))
			require.Error(t, err)
			if test.mismatch {
				require.ErrorIs(t, err, ErrDimensionMismatch)
			} else {
				require.NotErrorIs(t, err, ErrDimensionMismatch)
			}
		})
	}
}

func TestReadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fpath := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(fpath, []byte("zz_couplers: [1, 2, 1]\n"), 0644))

	m, err := ReadConfig(fpath)
	require.NoError(t, err)
	require.Equal(t, 4, m.L())
	require.Equal(t, []int{0, 1, 0}, m.ZZCouplerEquivalence())

	_, err = ReadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
