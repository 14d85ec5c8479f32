// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package store persists registry snapshots in SQLite so a later run, or
// another tool, can resolve references without rescanning sources.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/petar-djukic/go-jldoc/internal/logging"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// ErrNotFound is returned when a requested build does not exist.
var ErrNotFound = errors.New("build not found")

// Store is a SQLite database of builds and their registry entries.
type Store struct {
	conn *sql.DB
	log  *zap.Logger
	path string
}

// Build describes one saved snapshot.
type Build struct {
	ID        string    `json:"id" yaml:"id"`
	Root      string    `json:"root" yaml:"root"` // Source directory the build was made from
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Entries   int       `json:"entries" yaml:"entries"`
}

// Open opens or creates the database at path. The special path ":memory:"
// gives a private in-memory database.
func Open(path string, log *zap.Logger) (*Store, error) {
	log = logging.OrNop(log)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// One connection keeps an in-memory database alive and serialises
	// writers.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.Wrapf(err, "setting %s", pragma)
		}
	}

	s := &Store{conn: conn, log: log, path: path}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "initializing schema")
	}
	log.Debug("opened store", zap.String("path", path))
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at DESC);

		CREATE TABLE IF NOT EXISTS entries (
			build_id TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			scope TEXT NOT NULL,
			qualified_id TEXT NOT NULL,
			anchor TEXT NOT NULL,
			document TEXT NOT NULL,
			template_parameters TEXT,
			signature TEXT,
			PRIMARY KEY (build_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_entries_document ON entries(build_id, document);
		CREATE INDEX IF NOT EXISTS idx_entries_qualified_id ON entries(qualified_id);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// SaveBuild stores entries as a new build of root and returns it.
func (s *Store) SaveBuild(ctx context.Context, root string, entries []types.Entry) (Build, error) {
	b := Build{
		ID:        uuid.NewString(),
		Root:      root,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Entries:   len(entries),
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO builds (id, root, created_at) VALUES (?, ?, ?)`,
			b.ID, b.Root, b.CreatedAt.Format(time.RFC3339)); err != nil {
			return errors.Wrap(err, "inserting build")
		}
		return insertEntries(ctx, tx, b.ID, 0, entries)
	})
	if err != nil {
		return Build{}, errors.Wrapf(err, "saving build of %s", root)
	}

	s.log.Debug("saved build", zap.String("build", b.ID), zap.Int("entries", b.Entries))
	return b, nil
}

// ReplaceDocument swaps the entries of one document inside an existing
// build. The new entries are ordered after all others, as they are in a
// registry that cleared and re-registered the document.
func (s *Store) ReplaceDocument(ctx context.Context, buildID, doc string, entries []types.Entry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds WHERE id = ?`, buildID).Scan(&exists)
		if err != nil {
			return errors.Wrap(err, "looking up build")
		}
		if exists == 0 {
			return errors.Wrapf(ErrNotFound, "build %s", buildID)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM entries WHERE build_id = ? AND document = ?`, buildID, doc); err != nil {
			return errors.Wrapf(err, "clearing document %s", doc)
		}

		var next int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq) + 1, 0) FROM entries WHERE build_id = ?`, buildID).Scan(&next)
		if err != nil {
			return errors.Wrap(err, "reading sequence")
		}
		return insertEntries(ctx, tx, buildID, next, entries)
	})
}

// LoadEntries returns the entries of a build in registration order.
func (s *Store) LoadEntries(ctx context.Context, buildID string) ([]types.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT kind, name, scope, qualified_id, anchor, document, template_parameters, signature
		FROM entries WHERE build_id = ? ORDER BY seq`, buildID)
	if err != nil {
		return nil, errors.Wrap(err, "querying entries")
	}
	defer rows.Close()

	var out []types.Entry
	for rows.Next() {
		var (
			e                   types.Entry
			kind, scope         string
			params, sigSnapshot sql.NullString
		)
		if err := rows.Scan(&kind, &e.Name, &scope, &e.QualifiedID, &e.Anchor, &e.Document, &params, &sigSnapshot); err != nil {
			return nil, errors.Wrap(err, "scanning entry")
		}
		if e.Kind, err = types.ParseKind(kind); err != nil {
			return nil, err
		}
		e.Scope = types.ParseScope(scope)
		if params.Valid {
			if err := json.Unmarshal([]byte(params.String), &e.TemplateParameters); err != nil {
				return nil, errors.Wrapf(err, "decoding template parameters of %s", e.QualifiedID)
			}
		}
		if sigSnapshot.Valid {
			e.Signature = &types.Signature{}
			if err := json.Unmarshal([]byte(sigSnapshot.String), e.Signature); err != nil {
				return nil, errors.Wrapf(err, "decoding signature of %s", e.QualifiedID)
			}
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterating entries")
}

const buildColumns = `
	SELECT b.id, b.root, b.created_at, COUNT(e.seq)
	FROM builds b LEFT JOIN entries e ON e.build_id = b.id`

// Builds lists saved builds, newest first.
func (s *Store) Builds(ctx context.Context) ([]Build, error) {
	rows, err := s.conn.QueryContext(ctx, buildColumns+`
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.rowid DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying builds")
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, errors.Wrap(rows.Err(), "iterating builds")
}

// Get returns one build, or an error wrapping ErrNotFound.
func (s *Store) Get(ctx context.Context, buildID string) (Build, error) {
	rows, err := s.conn.QueryContext(ctx, buildColumns+`
		WHERE b.id = ?
		GROUP BY b.id`, buildID)
	if err != nil {
		return Build{}, errors.Wrapf(err, "querying build %s", buildID)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Build{}, errors.Wrapf(err, "querying build %s", buildID)
		}
		return Build{}, errors.Wrapf(ErrNotFound, "build %s", buildID)
	}
	return scanBuild(rows)
}

func scanBuild(rows *sql.Rows) (Build, error) {
	var (
		b       Build
		created string
	)
	if err := rows.Scan(&b.ID, &b.Root, &created, &b.Entries); err != nil {
		return Build{}, errors.Wrap(err, "scanning build")
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return Build{}, errors.Wrapf(err, "parsing time of build %s", b.ID)
	}
	b.CreatedAt = t
	return b, nil
}

// Latest returns the newest build, or ErrNotFound when there is none.
func (s *Store) Latest(ctx context.Context) (Build, error) {
	builds, err := s.Builds(ctx)
	if err != nil {
		return Build{}, err
	}
	if len(builds) == 0 {
		return Build{}, ErrNotFound
	}
	return builds[0], nil
}

// DeleteBuild removes a build and its entries.
func (s *Store) DeleteBuild(ctx context.Context, buildID string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM builds WHERE id = ?`, buildID)
	if err != nil {
		return errors.Wrapf(err, "deleting build %s", buildID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "build %s", buildID)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing")
}

func insertEntries(ctx context.Context, tx *sql.Tx, buildID string, seq int, entries []types.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (build_id, seq, kind, name, scope, qualified_id, anchor, document, template_parameters, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for i, e := range entries {
		params, err := nullJSON(e.TemplateParameters, len(e.TemplateParameters) == 0)
		if err != nil {
			return err
		}
		sig, err := nullJSON(e.Signature, e.Signature == nil)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			buildID, seq+i, e.Kind.String(), e.Name, e.Scope.String(),
			e.QualifiedID, e.Anchor, e.Document, params, sig); err != nil {
			return errors.Wrapf(err, "inserting entry %s", e.QualifiedID)
		}
	}
	return nil
}

func nullJSON(v any, null bool) (sql.NullString, error) {
	if null {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "encoding snapshot")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
