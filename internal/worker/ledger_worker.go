// Package worker mirrors ledger events onto the spreadsheet as they arrive.
package worker

import (
	"context"
	"fmt"

	"savings/internal/amqp"
	"savings/internal/core"
	applog "savings/internal/log"
)

// RecordAppender adds one ledger row to the export target.
type RecordAppender interface {
	AppendRecord(ctx context.Context, r core.Record) (string, error)
}

// LedgerWorker handles events consumed from the ledger queue.
type LedgerWorker struct {
	appender RecordAppender
	logger   *applog.Logger
}

func NewLedgerWorker(appender RecordAppender, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerWorker{
		appender: appender,
		logger:   logger.WithComponent(applog.ComponentSheets),
	}
}

// HandleEvent appends added records to the sheet. Goal events are only
// logged since the sheet holds records alone. Payloads that no longer
// validate are dropped rather than retried.
func (w *LedgerWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	switch ev.Type {
	case amqp.EventRecordAdded:
		return w.handleRecord(ctx, ev.Record)
	case amqp.EventGoalSet:
		w.logger.DebugContext(ctx, "Goal event skipped",
			applog.FieldMonth, ev.Goal.Month,
			applog.FieldTarget, ev.Goal.TargetAmount)
		return nil
	default:
		w.logger.WarnContext(ctx, "Unknown ledger event", "type", ev.Type)
		return nil
	}
}

func (w *LedgerWorker) handleRecord(ctx context.Context, p *amqp.RecordPayload) error {
	r, err := recordFromPayload(p)
	if err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid record event",
			applog.FieldRef, p.Ref,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation)
		return nil
	}

	rng, err := w.appender.AppendRecord(ctx, r)
	if err != nil {
		return fmt.Errorf("append record %s: %w", p.Ref, err)
	}

	w.logger.InfoContext(ctx, "Record appended to sheet",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRef, p.Ref,
		"range", rng)
	return nil
}

func recordFromPayload(p *amqp.RecordPayload) (core.Record, error) {
	r := core.Record{
		Type:     core.RecordType(p.Type),
		Amount:   p.Amount,
		Category: core.Category(p.Category),
		Month:    p.Month,
		Tags:     p.Tags,
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	return r, nil
}
