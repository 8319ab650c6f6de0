package backend

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"savings/internal/config"
	"savings/internal/core"
	applog "savings/internal/log"
)

func testFactory() Factory {
	return NewFactory(applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}}))
}

func TestCreateBackend(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db")

	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		wantCleanup bool
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDSN: dsn}, wantCleanup: true},
		{name: "sqlite without dsn", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown", config: Config{Type: "sheets"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testFactory().CreateBackend(context.Background(), tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			if (res.Cleanup != nil) != tt.wantCleanup {
				t.Fatalf("cleanup presence = %v, want %v", res.Cleanup != nil, tt.wantCleanup)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			r, _ := core.NewRecord(core.Income, "10", core.Other, "1", "")
			if _, err := res.Backend.AppendRecord(context.Background(), r); err != nil {
				t.Fatalf("AppendRecord: %v", err)
			}
			l, err := res.Backend.Snapshot(context.Background())
			if err != nil || len(l.Records) != 1 {
				t.Fatalf("Snapshot: %v %+v", err, l)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	got, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDSN: "file:x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDSN != "file:x.db" {
		t.Fatalf("unexpected config %+v", got)
	}
}
