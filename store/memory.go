package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Koukyosyumei/mlgymbo/attack"
)

type MemoryStore struct {
	mu       sync.RWMutex
	programs map[string]ProgramRecord
	runs     map[string]RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.programs = make(map[string]ProgramRecord)
	s.runs = make(map[string]RunRecord)
	return nil
}

func (s *MemoryStore) SaveProgram(_ context.Context, rec ProgramRecord) error {
	if rec.Digest == "" {
		return errors.New("program record has no digest")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.programs == nil {
		return errors.New("store is not initialized")
	}
	s.programs[rec.Digest] = rec
	return nil
}

func (s *MemoryStore) GetProgram(_ context.Context, digest string) (ProgramRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.programs[digest]
	return rec, ok, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, rec RunRecord) error {
	if rec.Digest == "" {
		return errors.New("run record has no digest")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runs == nil {
		return errors.New("store is not initialized")
	}
	s.runs[rec.Digest] = copyRun(rec)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, digest string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[digest]
	if !ok {
		return RunRecord{}, false, nil
	}
	return copyRun(rec), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, copyRun(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Digest < out[j].Digest
	})
	return out, nil
}

// copyRun deep-copies the candidate slices and maps so callers cannot reach
// into stored state.
func copyRun(rec RunRecord) RunRecord {
	out := rec
	if rec.Results == nil {
		return out
	}
	out.Results = make([]attack.Candidate, len(rec.Results))
	for i, c := range rec.Results {
		cp := attack.Candidate{Input: append([]float64(nil), c.Input...)}
		if c.Values != nil {
			cp.Values = make(map[string]float64, len(c.Values))
			for k, v := range c.Values {
				cp.Values[k] = v
			}
		}
		out.Results[i] = cp
	}
	return out
}
