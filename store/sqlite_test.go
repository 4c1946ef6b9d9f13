//go:build sqlite

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Koukyosyumei/mlgymbo/attack"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mlgymbo.db")

	s := NewSQLiteStore(dbPath)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	prog := NewProgramRecord("h_0_0_a = sv_0;\n", 8)
	if err := s.SaveProgram(ctx, prog); err != nil {
		t.Fatalf("save program: %v", err)
	}
	gotProg, ok, err := s.GetProgram(ctx, prog.Digest)
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if !ok || gotProg.Code != prog.Code {
		t.Fatalf("unexpected program: %+v ok=%v", gotProg, ok)
	}

	run := NewRunRecord("return 0;", attack.DefaultSearchConfig(), []attack.Candidate{{
		Input:  []float64{0.1, 0.9},
		Values: map[string]float64{"sv_1": 0.9},
	}})
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	gotRun, ok, err := s.GetRun(ctx, run.Digest)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || len(gotRun.Results) != 1 || gotRun.Results[0].Values["sv_1"] != 0.9 {
		t.Fatalf("unexpected run: %+v ok=%v", gotRun, ok)
	}

	if _, ok, _ := s.GetRun(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown digest")
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mlgymbo.db")

	s := NewSQLiteStore(dbPath)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	rec := NewProgramRecord("return 0;", 8)
	if err := s.SaveProgram(ctx, rec); err != nil {
		t.Fatalf("save program: %v", err)
	}
	rec.Precision = 4
	if err := s.SaveProgram(ctx, rec); err != nil {
		t.Fatalf("re-save program: %v", err)
	}

	got, ok, err := s.GetProgram(ctx, rec.Digest)
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if !ok || got.Precision != 4 {
		t.Fatalf("upsert did not replace payload: %+v", got)
	}
}

func TestSQLiteStoreListRuns(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mlgymbo.db")

	s := NewSQLiteStore(dbPath)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	for _, code := range []string{"return 0;", "return 1;"} {
		if err := s.SaveRun(ctx, NewRunRecord(code, attack.DefaultSearchConfig(), nil)); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}
	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "mlgymbo.db"))
	if err := s.SaveProgram(ctx, NewProgramRecord("return 0;", 8)); err == nil {
		t.Fatal("expected error before Init")
	}
	if err := NewSQLiteStore("").Init(ctx); err == nil {
		t.Fatal("expected error for empty path")
	}
}
