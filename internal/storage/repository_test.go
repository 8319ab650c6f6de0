package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"savings/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteAppendAndSnapshotOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := []core.Record{
		{Type: core.Income, Amount: 1000, Category: core.Food, Month: "3"},
		{Type: core.Expense, Amount: 300.25, Category: core.Housing, Month: "3", Tags: "rent"},
		{Type: core.Income, Amount: 500, Category: core.Other, Month: "4"},
	}
	for i, r := range in {
		ref, err := repo.AppendRecord(ctx, r)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if ref == "" {
			t.Fatalf("append %d returned empty ref", i)
		}
	}

	l, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(l.Records) != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), len(l.Records))
	}
	for i := range in {
		if l.Records[i] != in[i] {
			t.Fatalf("record %d: got %+v want %+v", i, l.Records[i], in[i])
		}
	}
}

func TestMemoryDSNRepositoriesAreIsolated(t *testing.T) {
	ctx := context.Background()

	first, err := NewSQLiteRepository(MemoryDSN)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	defer first.Close()

	if _, err := first.AppendRecord(ctx, core.Record{Type: core.Income, Amount: 10, Category: core.Food, Month: "1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := first.UpsertGoal(ctx, core.Goal{Month: "1", TargetAmount: 5}); err != nil {
		t.Fatalf("upsert goal: %v", err)
	}

	second, err := NewSQLiteRepository(MemoryDSN)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer second.Close()

	l, err := second.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(l.Records) != 0 || len(l.Goals) != 0 {
		t.Fatalf("second repository sees %d records and %d goals, want none", len(l.Records), len(l.Goals))
	}

	l, err = first.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot first: %v", err)
	}
	if len(l.Records) != 1 {
		t.Fatalf("first repository has %d records, want 1", len(l.Records))
	}
}

func TestSQLiteGoalUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertGoal(ctx, core.Goal{Month: "3", TargetAmount: 100}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertGoal(ctx, core.Goal{Month: "3", TargetAmount: 250}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	l, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(l.Goals) != 1 || l.Goals["3"].TargetAmount != 250 {
		t.Fatalf("unexpected goals: %+v", l.Goals)
	}
}

func TestSQLiteRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.AppendRecord(ctx, core.Record{Type: core.Income, Amount: -5, Category: core.Food, Month: "1"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := repo.UpsertGoal(ctx, core.Goal{Month: ""}); !errors.Is(err, core.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
	l, _ := repo.Snapshot(ctx)
	if len(l.Records) != 0 || len(l.Goals) != 0 {
		t.Fatalf("invalid input must not be stored: %+v", l)
	}
}

func TestFileDir(t *testing.T) {
	cases := map[string]string{
		MemoryDSN:               "",
		":memory:":              "",
		"ledger.db":             "",
		"./data/ledger.db":      "data",
		"file:/tmp/x/l.db?_x=1": "/tmp/x",
	}
	for dsn, want := range cases {
		if got := fileDir(dsn); got != want {
			t.Fatalf("fileDir(%q) = %q, want %q", dsn, got, want)
		}
	}
}
