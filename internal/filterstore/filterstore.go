/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package filterstore persists named filter graphs in an embedded SQLite
// database so they can be reused across subtitle projects. Graph payloads
// are stored in their JSON form and validated before they hit the database.
package filterstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"log/slog"

	applog "gosubstudio/internal/log"
	"gosubstudio/internal/nde"
	"gosubstudio/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DefaultFileName is the library file created under the config dir.
	DefaultFileName = "filters.sqlite"

	// schemaVersion tracks the local SQLite schema for the filter library.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 1
)

// ErrNotFound is returned when a filter id or name has no row.
var ErrNotFound = errors.New("filterstore: filter not found")

// Filter is one stored filter graph with its library metadata.
type Filter struct {
	ID          string
	Name        string
	Description string
	Graph       []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store wraps the library database. It is safe for sequential use; the
// underlying pool is capped at one connection, matching embedded usage.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the filter library at path, enables WAL mode, and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("filterstore"), "open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("library path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create library dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("filter library ready")
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the library file location.
func (s *Store) Path() string { return s.path }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS filters (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			graph       TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_filters_name ON filters(name);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if curSchema > schemaVersion {
			return fmt.Errorf("library schema %d is newer than supported %d", curSchema, schemaVersion)
		}
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Save inserts the filter, assigning a fresh id when empty, or overwrites
// the existing row when the id is known. The graph payload must parse as a
// valid filter graph.
func (s *Store) Save(ctx context.Context, f *Filter) error {
	if f == nil {
		return errors.New("nil filter")
	}
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("filter name is required")
	}
	if err := nde.ValidateGraphDocument(f.Graph); err != nil {
		return err
	}
	if _, err := nde.UnmarshalGraph(f.Graph); err != nil {
		return fmt.Errorf("invalid graph payload: %w", err)
	}
	// Second precision matches the RFC3339 column format, so the in-memory
	// struct and a reloaded row compare equal.
	now := time.Now().UTC().Truncate(time.Second)
	if f.ID == "" {
		f.ID = uuid.NewString()
		f.CreatedAt = now
		f.UpdatedAt = now
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO filters (id, name, description, graph, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Description, string(f.Graph), stamp(f.CreatedAt), stamp(f.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert filter: %w", err)
		}
		return nil
	}
	f.UpdatedAt = now
	res, err := s.db.ExecContext(ctx,
		`UPDATE filters SET name=?, description=?, graph=?, updated_at=? WHERE id=?`,
		f.Name, f.Description, string(f.Graph), stamp(f.UpdatedAt), f.ID)
	if err != nil {
		return fmt.Errorf("update filter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update filter: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads a filter by id.
func (s *Store) Get(ctx context.Context, id string) (*Filter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, graph, created_at, updated_at FROM filters WHERE id=?`, id)
	return scanFilter(row)
}

// GetByName loads a filter by its unique name.
func (s *Store) GetByName(ctx context.Context, name string) (*Filter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, graph, created_at, updated_at FROM filters WHERE name=?`, name)
	return scanFilter(row)
}

// List returns all filters ordered by name.
func (s *Store) List(ctx context.Context) ([]Filter, error) {
	return s.query(ctx,
		`SELECT id, name, description, graph, created_at, updated_at FROM filters ORDER BY name`)
}

// Search returns filters whose name or description contains the term,
// case-insensitively, ordered by name. An empty term lists everything.
func (s *Store) Search(ctx context.Context, term string) ([]Filter, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	like := "%" + strings.ToLower(term) + "%"
	return s.query(ctx,
		`SELECT id, name, description, graph, created_at, updated_at FROM filters
		 WHERE lower(name) LIKE ? OR lower(description) LIKE ? ORDER BY name`, like, like)
}

// Delete removes a filter by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Filter, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer rows.Close()
	var out []Filter
	for rows.Next() {
		var f Filter
		var graph, created, updated string
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &graph, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		f.Graph = []byte(graph)
		f.CreatedAt = parseStamp(created)
		f.UpdatedAt = parseStamp(updated)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return out, nil
}

func scanFilter(row *sql.Row) (*Filter, error) {
	var f Filter
	var graph, created, updated string
	err := row.Scan(&f.ID, &f.Name, &f.Description, &graph, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan filter: %w", err)
	}
	f.Graph = []byte(graph)
	f.CreatedAt = parseStamp(created)
	f.UpdatedAt = parseStamp(updated)
	return &f, nil
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// parseStamp tolerates malformed rows; a zero time is better than failing a
// whole listing over one bad timestamp.
func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
