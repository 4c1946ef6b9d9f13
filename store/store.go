// Package store persists lowered programs and attack runs. Program text is
// deterministic for fixed inputs, so records are keyed by the SHA-256 digest
// of the code.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Koukyosyumei/mlgymbo/attack"
)

// ProgramRecord is one lowered program.
type ProgramRecord struct {
	Digest    string    `json:"digest"`
	Code      string    `json:"code"`
	Precision int       `json:"precision"`
	CreatedAt time.Time `json:"created_at"`
}

// RunRecord is one attack run: the searched program, its configuration, and
// the candidates the engine reported.
type RunRecord struct {
	Digest    string              `json:"digest"`
	Code      string              `json:"code"`
	Config    attack.SearchConfig `json:"config"`
	Results   []attack.Candidate  `json:"results"`
	CreatedAt time.Time           `json:"created_at"`
}

// Store defines persistence operations for programs and runs.
type Store interface {
	Init(ctx context.Context) error
	SaveProgram(ctx context.Context, rec ProgramRecord) error
	GetProgram(ctx context.Context, digest string) (ProgramRecord, bool, error)
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, digest string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
}

// Digest returns the hex SHA-256 of program text.
func Digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// NewProgramRecord stamps a program with its digest and creation time.
func NewProgramRecord(code string, precision int) ProgramRecord {
	return ProgramRecord{
		Digest:    Digest(code),
		Code:      code,
		Precision: precision,
		CreatedAt: time.Now().UTC(),
	}
}

// NewRunRecord stamps a run with its program digest and creation time.
func NewRunRecord(code string, cfg attack.SearchConfig, results []attack.Candidate) RunRecord {
	return RunRecord{
		Digest:    Digest(code),
		Code:      code,
		Config:    cfg,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}
}
