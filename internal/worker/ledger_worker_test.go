package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"savings/internal/amqp"
	"savings/internal/core"
	applog "savings/internal/log"
)

type fakeAppender struct {
	rows []core.Record
	err  error
}

func (f *fakeAppender) AppendRecord(ctx context.Context, r core.Record) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, r)
	return "Ledger!A2:E2", nil
}

func newTestWorker(app *fakeAppender) *LedgerWorker {
	return NewLedgerWorker(app, applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}}))
}

func TestHandleEvent(t *testing.T) {
	valid := core.Record{Type: core.Expense, Amount: 42.5, Category: core.Health, Month: "3", Tags: "dentist"}

	tests := []struct {
		name     string
		event    *amqp.LedgerEvent
		wantRows int
	}{
		{"record appended", amqp.NewRecordAddedEvent(valid, "sqlite:1"), 1},
		{"goal skipped", amqp.NewGoalSetEvent(core.Goal{Month: "3", TargetAmount: 100}), 0},
		{"invalid category dropped", &amqp.LedgerEvent{
			Type:   amqp.EventRecordAdded,
			Record: &amqp.RecordPayload{Ref: "x", Type: string(core.Income), Amount: 1, Category: "other"},
		}, 0},
		{"invalid amount dropped", &amqp.LedgerEvent{
			Type:   amqp.EventRecordAdded,
			Record: &amqp.RecordPayload{Ref: "y", Type: string(core.Income), Amount: -1, Category: string(core.Savings)},
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &fakeAppender{}
			w := newTestWorker(app)
			if err := w.HandleEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			if len(app.rows) != tt.wantRows {
				t.Fatalf("rows = %d, want %d", len(app.rows), tt.wantRows)
			}
		})
	}
}

func TestHandleEventKeepsRecordFields(t *testing.T) {
	app := &fakeAppender{}
	w := newTestWorker(app)
	r := core.Record{Type: core.Income, Amount: 1000, Category: core.Savings, Month: "1", Tags: "bonus"}

	if err := w.HandleEvent(context.Background(), amqp.NewRecordAddedEvent(r, "mem:1")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(app.rows) != 1 || app.rows[0] != r {
		t.Fatalf("appended %+v, want %+v", app.rows, r)
	}
}

func TestHandleEventAppendFailure(t *testing.T) {
	upstream := errors.New("quota exceeded")
	w := newTestWorker(&fakeAppender{err: upstream})
	r := core.Record{Type: core.Income, Amount: 5, Category: core.Savings, Month: "2"}

	err := w.HandleEvent(context.Background(), amqp.NewRecordAddedEvent(r, "mem:2"))
	if !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}
