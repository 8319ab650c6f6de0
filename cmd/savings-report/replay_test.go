package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"savings/internal/core"
	"savings/internal/export"
)

const sample = "type,amount,category,month,tags\n" +
	"הכנסה,1000,אחר,3,salary\n" +
	"הוצאה,300.50,מזון,3,a,b\n" +
	"הוצאה,20,תחבורה,4,"

func TestGoalFlags(t *testing.T) {
	var g goalFlags
	if err := g.Set("3=700"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for _, bad := range []string{"3", "=700", "3="} {
		if err := g.Set(bad); err == nil {
			t.Fatalf("Set(%q): expected error", bad)
		}
	}
	if g.String() != "3=700" {
		t.Fatalf("String() = %q", g.String())
	}
}

func TestReplay(t *testing.T) {
	records, err := export.ParseCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	svc, err := replay(context.Background(), records, goalFlags{"3=600", "4 = 10"}, io.Discard)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	defer svc.Close()

	sums, _ := svc.Summary(context.Background())
	if len(sums) != 2 {
		t.Fatalf("expected 2 months, got %+v", sums)
	}
	if sums[0].Net != 699.5 || sums[0].MetGoal == nil || !*sums[0].MetGoal {
		t.Fatalf("unexpected march summary %+v", sums[0])
	}
	if sums[1].MetGoal == nil || *sums[1].MetGoal {
		t.Fatalf("april goal should be missed: %+v", sums[1])
	}

	got, _ := svc.ExportCSV(context.Background())
	want := strings.Replace(sample, "300.50", "300.5", 1)
	if got != want {
		t.Fatalf("ExportCSV() = %q, want %q", got, want)
	}
}

func TestReplayRejectsBadGoal(t *testing.T) {
	_, err := replay(context.Background(), nil, goalFlags{"3=abc"}, io.Discard)
	if !errors.Is(err, core.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestReadRecordsAndWriteOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := readRecords(in)
	if err != nil || len(records) != 3 {
		t.Fatalf("readRecords: %v %v", records, err)
	}
	if records[1].Tags != "a,b" {
		t.Fatalf("tags with commas must survive, got %q", records[1].Tags)
	}

	out := filepath.Join(dir, "out.csv")
	if err := writeOutput(out, export.ToCSV(records)); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	b, _ := os.ReadFile(out)
	if !strings.HasPrefix(string(b), export.Header+"\n") {
		t.Fatalf("unexpected output %q", b)
	}

	if _, err := readRecords(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
