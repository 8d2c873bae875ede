// Package store archives global 21-cm runs in a SQLite database so that
// histories can be compared without being recomputed.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/phil-mansfield/ares/sim"
	"github.com/phil-mansfield/ares/version"
	"github.com/pkg/errors"
)

// ErrNotFound is returned (wrapped) when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	params_hash TEXT NOT NULL,
	params_yaml TEXT NOT NULL,
	version     TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	n_rows      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_params_hash ON runs (params_hash);
CREATE TABLE IF NOT EXISTS columns (
	run_id   TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	data     BLOB NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

// Store is an archive of runs.
type Store struct {
	db *sql.DB
}

// RunInfo describes an archived run.
type RunInfo struct {
	ID         string
	Name       string
	ParamsHash string
	Version    string
	CreatedAt  time.Time
	Rows       int
}

// Run is an archived run along with its parameters and history.
type Run struct {
	RunInfo
	Params  sim.Params
	History *sim.History
}

func toMillis(t time.Time) int64     { return t.UTC().UnixMilli() }
func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Open opens the store at path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "opening store '%s'", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating store schema")
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HashParams returns the YAML encoding of p and its hash. Runs with equal
// hashes have identical parameters.
func HashParams(p sim.Params) (string, []byte, error) {
	b, err := yaml.Marshal(&p)
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding parameters")
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), b, nil
}

func encodeColumn(col []float64) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.LittleEndian, col)
	return buf.Bytes(), err
}

func decodeColumn(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("column blob has %d bytes", len(b))
	}
	col := make([]float64, len(b)/8)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, col)
	return col, err
}

// Save archives a run and returns its ID.
func (s *Store) Save(
	ctx context.Context, name string, p sim.Params, h *sim.History,
) (string, error) {
	hash, yml, err := HashParams(p)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, params_hash, params_yaml, version,
		   created_at, n_rows) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, hash, string(yml), version.SourceVersion,
		toMillis(time.Now()), h.Len(),
	)
	if err != nil {
		return "", errors.Wrap(err, "inserting run")
	}

	for i, col := range h.Names() {
		vals, err := h.Get(col)
		if err != nil {
			return "", err
		}
		blob, err := encodeColumn(vals)
		if err != nil {
			return "", err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO columns (run_id, position, name, data)
			 VALUES (?, ?, ?, ?)`, id, i, col, blob)
		if err != nil {
			return "", errors.Wrapf(err, "inserting column '%s'", col)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Load reads an archived run.
func (s *Store) Load(ctx context.Context, id string) (*Run, error) {
	run := &Run{}
	var yml string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, params_hash, params_yaml, version, created_at, n_rows
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Name, &run.ParamsHash, &yml, &run.Version,
		&created, &run.Rows)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "'%s'", id)
	} else if err != nil {
		return nil, err
	}
	run.CreatedAt = fromMillis(created)
	if err := yaml.Unmarshal([]byte(yml), &run.Params); err != nil {
		return nil, errors.Wrapf(err, "decoding parameters of run '%s'", id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, data FROM columns WHERE run_id = ? ORDER BY position`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.History = sim.NewHistory()
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, err
		}
		col, err := decodeColumn(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "column '%s' of run '%s'", name, id)
		}
		if err := run.History.SetColumn(name, col); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if run.History.Len() != run.Rows {
		return nil, fmt.Errorf("run '%s' has %d rows, expected %d",
			id, run.History.Len(), run.Rows)
	}
	return run, nil
}

func (s *Store) query(
	ctx context.Context, where string, args ...interface{},
) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, params_hash, version, created_at, n_rows
		 FROM runs `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunInfo{}
	for rows.Next() {
		info := RunInfo{}
		var created int64
		err := rows.Scan(&info.ID, &info.Name, &info.ParamsHash,
			&info.Version, &created, &info.Rows)
		if err != nil {
			return nil, err
		}
		info.CreatedAt = fromMillis(created)
		out = append(out, info)
	}
	return out, rows.Err()
}

// List returns every archived run, oldest first.
func (s *Store) List(ctx context.Context) ([]RunInfo, error) {
	return s.query(ctx, "")
}

// FindByHash returns the runs which used exactly the parameters p.
func (s *Store) FindByHash(ctx context.Context, p sim.Params) ([]RunInfo, error) {
	hash, _, err := HashParams(p)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, "WHERE params_hash = ?", hash)
}

// Delete removes a run from the store.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrNotFound, "'%s'", id)
	}
	return nil
}
