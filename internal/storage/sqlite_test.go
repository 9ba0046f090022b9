package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestStartAndFinishRun(t *testing.T) {
	s := openTestStore(t)

	id := uuid.New().String()
	if err := s.StartRun(Run{ID: id, Lang: "en"}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	r, err := s.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != StatusRunning {
		t.Errorf("Status = %q, want running", r.Status)
	}
	if !r.FinishedAt.IsZero() {
		t.Errorf("FinishedAt = %v, want zero for running run", r.FinishedAt)
	}

	if err := s.FinishRun(id, 382, 68411, StatusSucceeded, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	r, err = s.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if r.Status != StatusSucceeded || r.Fetched != 382 || r.CacheSize != 68411 {
		t.Errorf("run = %+v", r)
	}
	if r.FinishedAt.IsZero() {
		t.Error("FinishedAt not recorded")
	}
	if r.Duration() < 0 {
		t.Errorf("Duration() = %v, want >= 0", r.Duration())
	}
}

func TestFinishRun_Missing(t *testing.T) {
	s := openTestStore(t)

	err := s.FinishRun("no-such-run", 0, 0, StatusFailed, "boom")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecentRuns_Ordering(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			ID:        uuid.New().String(),
			Lang:      "en",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.StartRun(run); err != nil {
			t.Fatalf("StartRun %d: %v", i, err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest-first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestGetRun_Missing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
