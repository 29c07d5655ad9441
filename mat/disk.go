package mat

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableMatrix = "m"
)

// DiskMatrix is a sparse matrix stored in a sqlite database, for Hamiltonians that do not fit in memory.
type DiskMatrix struct {
	Path string
	rows int
	cols int

	db *sql.DB
}

func DiskM(dbPath string, dense [][]float64) *DiskMatrix {
	m, err := diskM(dbPath, dense)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return m
}

func diskM(dbPath string, dense [][]float64) (*DiskMatrix, error) {
	m := &DiskMatrix{Path: dbPath, rows: len(dense), cols: len(dense[0])}
	var err error
	m.db, err = newDB(m.Path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for i, row := range dense {
		for j, v := range row {
			if err := setItem(ctx, m.db, i, j, v); err != nil {
				return nil, errors.Wrap(err, "")
			}
		}
	}

	return m, nil
}

// Close closes the database and removes its file.
func (m *DiskMatrix) Close() error {
	var err error
	if err1 := m.db.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := os.Remove(m.Path); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func (m *DiskMatrix) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deleteAll(ctx, m.db); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) Scalar(v float64) {
	m.rows, m.cols = 1, 1
	if err := m.scalar(v); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) scalar(v float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deleteAll(ctx, m.db); err != nil {
		return errors.Wrap(err, "")
	}
	if err := setItem(ctx, m.db, 0, 0, v); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (m *DiskMatrix) Rows() int { return m.rows }
func (m *DiskMatrix) Cols() int { return m.cols }

func (m *DiskMatrix) At(i, j int) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	v, err := at(ctx, m.db, i, j)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return v
}

func (a *DiskMatrix) COO() *COO {
	b, err := a.coo()
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return b
}

func (a *DiskMatrix) coo() (*COO, error) {
	b := COOZeros(a.rows, a.cols)

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	err := scanAll(ctx, a.db, func(e entry) error {
		b.Data = append(b.Data, e)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}

// Add performs a += c*b, where b can be any Matrix.
func (a *DiskMatrix) Add(c float64, b Matrix) {
	if err := a.add(c, b); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (a *DiskMatrix) add(c float64, bMatrix Matrix) error {
	if a.rows != bMatrix.Rows() || a.cols != bMatrix.Cols() {
		return errors.Errorf("%dx%d %dx%d", a.rows, a.cols, bMatrix.Rows(), bMatrix.Cols())
	}
	// Read b fully before writing, in case b is a.
	b := bMatrix.COO()

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer tx.Rollback()
	for _, bv := range b.Data {
		av, err := at(ctx, tx, bv.row, bv.col)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if err := setItem(ctx, tx, bv.row, bv.col, av+c*bv.v); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (a *DiskMatrix) Kron(b *COO) {
	if err := a.kron(b); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (a *DiskMatrix) kron(b *COO) error {
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer os.RemoveAll(dir)

	if err := a.WriteCOO(dir); err != nil {
		return errors.Wrap(err, "")
	}
	cooReader, err := NewCOOReader(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer cooReader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer tx.Rollback()
	if err := deleteAll(ctx, tx); err != nil {
		return errors.Wrap(err, fmt.Sprintf("db %s", a.Path))
	}

	for {
		av, err := cooReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "")
		}

		for _, bv := range b.Data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			if err := setItem(ctx, tx, ky, kx, av.v*bv.v); err != nil {
				return errors.Wrap(err, "")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}

	a.rows, a.cols = a.rows*b.rows, a.cols*b.cols
	return nil
}

// NumNonZero returns the number of stored entries.
func (m *DiskMatrix) NumNonZero() int {
	n, err := m.numNonZero()
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return n
}

func (m *DiskMatrix) numNonZero() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf("SELECT count(1) FROM %s", tableMatrix)
	var n int
	if err := m.db.QueryRowContext(ctx, sqlStr).Scan(&n); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return n, nil
}

func (m *DiskMatrix) WriteCOO(dir string) error {
	if err := WriteShape(dir, m.rows, m.cols); err != nil {
		return errors.Wrap(err, "")
	}
	w, err := NewCOOWriter(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	err = scanAll(ctx, m.db, func(e entry) error {
		return w.Write(e.v, e.row, e.col)
	})
	if err != nil {
		err = errors.Wrap(err, "")
	}
	if err1 := w.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

type querier interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// scanAll calls fn on every entry in row major order.
func scanAll(ctx context.Context, db querier, fn func(entry) error) error {
	sqlStr := fmt.Sprintf(`SELECT i, j, v FROM %s ORDER BY i, j`, tableMatrix)
	rows, err := db.QueryContext(ctx, sqlStr)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer rows.Close()

	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.row, &e.col, &e.v); err != nil {
			return errors.Wrap(err, "")
		}
		if err := fn(e); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func at(ctx context.Context, db querier, i, j int) (float64, error) {
	sqlStr := fmt.Sprintf(`SELECT v FROM %s WHERE i=? AND j=?`, tableMatrix)
	var v float64
	err := db.QueryRowContext(ctx, sqlStr, i, j).Scan(&v)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return math.NaN(), errors.Wrap(err, "")
	default:
		return v, nil
	}
}

func setItem(ctx context.Context, db querier, i, j int, v float64) error {
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (i, j, v) VALUES (?, ?, ?)`, tableMatrix)
	args := []any{i, j, v}
	if v == 0 {
		sqlStr = fmt.Sprintf(`DELETE FROM %s WHERE i=? AND j=?`, tableMatrix)
		args = []any{i, j}
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	// A transaction holds the only writer, so queries in the same call must go through it.
	db.SetMaxOpenConns(1)

	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}

	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (i INTEGER, j INTEGER, v REAL, PRIMARY KEY (i, j)) STRICT`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func deleteAll(ctx context.Context, db querier) error {
	sqlStr := fmt.Sprintf(`DELETE FROM %s`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
