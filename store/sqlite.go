//go:build sqlite

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveProgram(ctx context.Context, rec ProgramRecord) error {
	if rec.Digest == "" {
		return errors.New("program record has no digest")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeProgram(rec)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO programs (digest, payload)
		VALUES (?, ?)
		ON CONFLICT(digest) DO UPDATE SET
			payload = excluded.payload
	`, rec.Digest, payload)
	return err
}

func (s *SQLiteStore) GetProgram(ctx context.Context, digest string) (ProgramRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return ProgramRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM programs WHERE digest = ?`, digest).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProgramRecord{}, false, nil
		}
		return ProgramRecord{}, false, err
	}

	rec, err := DecodeProgram(payload)
	if err != nil {
		return ProgramRecord{}, false, fmt.Errorf("decode program %s: %w", digest, err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rec RunRecord) error {
	if rec.Digest == "" {
		return errors.New("run record has no digest")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(rec)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (digest, payload)
		VALUES (?, ?)
		ON CONFLICT(digest) DO UPDATE SET
			payload = excluded.payload
	`, rec.Digest, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, digest string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE digest = ?`, digest).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}

	rec, err := DecodeRun(payload)
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("decode run %s: %w", digest, err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT digest, payload FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var digest string
		var payload []byte
		if err := rows.Scan(&digest, &payload); err != nil {
			return nil, err
		}
		rec, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", digest, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Digest < out[j].Digest
	})
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS programs (
			digest TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			digest TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
