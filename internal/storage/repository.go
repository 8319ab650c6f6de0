package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"savings/internal/core"
	"savings/internal/ledger"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the database in process memory. Each repository opened
// with it gets its own uniquely named database; the shared cache lets the
// migration connection and the repository see the same one. It lives as long
// as the repository holds its connection open.
const MemoryDSN = "file:savings?mode=memory&cache=shared"

// privateMemoryDSN names a fresh in-memory database for one repository.
func privateMemoryDSN() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate database name: %w", err)
	}
	return "file:savings-" + hex.EncodeToString(b) + "?mode=memory&cache=shared", nil
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is a session ledger backed by SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == MemoryDSN {
		private, err := privateMemoryDSN()
		if err != nil {
			return nil, err
		}
		dsn = private
	}

	if dir := fileDir(dsn); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: writers are serialised and an in-memory database
	// stays alive for the lifetime of the repository.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendRecord implements ledger.RecordWriter
func (r *SQLiteRepository) AppendRecord(ctx context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (type, amount, category, month, tags) VALUES (?, ?, ?, ?, ?)`,
		string(rec.Type), rec.Amount, string(rec.Category), rec.Month, rec.Tags)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("record id: %w", err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite",
		"id", id,
		"type", rec.Type,
		"amount", rec.Amount,
		"month", rec.Month)

	return strconv.FormatInt(id, 10), nil
}

// UpsertGoal implements ledger.GoalWriter
func (r *SQLiteRepository) UpsertGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (month, target_amount) VALUES (?, ?)
		 ON CONFLICT(month) DO UPDATE SET target_amount = excluded.target_amount, updated_at = CURRENT_TIMESTAMP`,
		g.Month, g.TargetAmount)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}

	slog.DebugContext(ctx, "Goal saved to SQLite", "month", g.Month, "target", g.TargetAmount)
	return nil
}

// Snapshot implements ledger.Reader. Records come back in insertion order.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Ledger, error) {
	l := core.NewLedger()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return l, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT type, amount, category, month, tags FROM records ORDER BY id`)
	if err != nil {
		return l, fmt.Errorf("query records: %w", err)
	}
	for rows.Next() {
		var (
			rec           core.Record
			typ, category string
		)
		if err := rows.Scan(&typ, &rec.Amount, &category, &rec.Month, &rec.Tags); err != nil {
			rows.Close()
			return l, fmt.Errorf("scan record: %w", err)
		}
		rec.Type = core.RecordType(typ)
		rec.Category = core.Category(category)
		l.Records = append(l.Records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return l, fmt.Errorf("iterate records: %w", err)
	}
	rows.Close()

	goals, err := tx.QueryContext(ctx, `SELECT month, target_amount FROM goals`)
	if err != nil {
		return l, fmt.Errorf("query goals: %w", err)
	}
	defer goals.Close()
	for goals.Next() {
		var g core.Goal
		if err := goals.Scan(&g.Month, &g.TargetAmount); err != nil {
			return l, fmt.Errorf("scan goal: %w", err)
		}
		l.Goals[g.Month] = g
	}
	if err := goals.Err(); err != nil {
		return l, fmt.Errorf("iterate goals: %w", err)
	}

	return l, nil
}

// fileDir returns the directory of a file-backed DSN, or "" for in-memory
// databases and paths in the working directory.
func fileDir(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
