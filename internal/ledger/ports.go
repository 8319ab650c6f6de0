// Package ledger defines the ports a ledger backend implements.
package ledger

import (
	"context"

	"savings/internal/core"
)

// Ports for ledger backends. Every backend is the single source of truth for
// one session and serialises its own writers.
type (
	RecordWriter interface {
		// AppendRecord stores r after all previously appended records and
		// returns a backend-specific reference.
		AppendRecord(ctx context.Context, r core.Record) (ref string, err error)
	}

	GoalWriter interface {
		// UpsertGoal replaces any goal already set for g.Month.
		UpsertGoal(ctx context.Context, g core.Goal) error
	}

	// Reader returns a consistent copy of the whole ledger.
	Reader interface {
		Snapshot(ctx context.Context) (core.Ledger, error)
	}

	Store interface {
		RecordWriter
		GoalWriter
		Reader
	}
)
