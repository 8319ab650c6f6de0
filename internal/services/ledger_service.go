package services

import (
	"context"
	"errors"
	"fmt"

	"savings/internal/core"
	"savings/internal/export"
	"savings/internal/ledger"
	applog "savings/internal/log"
	"savings/internal/summary"
)

// EventPublisher announces ledger mutations to other systems.
type EventPublisher interface {
	PublishRecordAdded(ctx context.Context, r core.Record, ref string) error
	PublishGoalSet(ctx context.Context, g core.Goal) error
	Close() error
}

// SheetExporter pushes the record list to a spreadsheet.
type SheetExporter interface {
	Export(ctx context.Context, records []core.Record) (rng string, err error)
}

var ErrExportUnavailable = errors.New("export target not configured")

// ErrExportFailed wraps failures reported by the export target itself, as
// opposed to failures reading the ledger.
var ErrExportFailed = errors.New("export target failed")

// LedgerService is the ledger store seen by the presentation layer: it
// validates collaborator input, appends through the backend and publishes an
// event after each mutation.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	sheets    SheetExporter
	logger    *applog.Logger
	cleanup   func() error
}

// Option configures optional collaborators of the service.
type Option func(*LedgerService)

func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithSheetExporter(e SheetExporter) Option {
	return func(s *LedgerService) { s.sheets = e }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

// WithCleanup registers a function run by Close, typically the backend's.
func WithCleanup(fn func() error) Option {
	return func(s *LedgerService) { s.cleanup = fn }
}

func NewLedgerService(store ledger.Store, opts ...Option) *LedgerService {
	s := &LedgerService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentLedger)
	return s
}

// AddRecord parses amount, appends a new record and returns it. On any
// validation failure the ledger is left untouched.
func (s *LedgerService) AddRecord(ctx context.Context, t core.RecordType, amount string, c core.Category, month, tags string) (core.Record, error) {
	r, err := core.NewRecord(t, amount, c, month, tags)
	if err == nil {
		err = r.Validate()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Record rejected", applog.NewFields().
			WithOperation(applog.OpAddRecord).
			WithErrorType(applog.ErrorTypeValidation).
			WithError(err).ToSlice()...)
		return core.Record{}, err
	}

	ref, err := s.store.AppendRecord(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("append record: %w", err)
	}

	fields := applog.NewFields().WithRecord(r).WithOperation(applog.OpAddRecord)
	fields[applog.FieldRef] = ref
	s.logger.InfoContext(ctx, "Record added", fields.ToSlice()...)

	if s.publisher != nil {
		if err := s.publisher.PublishRecordAdded(ctx, r, ref); err != nil {
			// the record is stored; delivery is best effort
			s.logger.LogError(ctx, "Failed to publish record event", err, applog.OpPublish, applog.NewFields().WithRecord(r))
		}
	}
	return r, nil
}

// SetGoal upserts the goal for month. Missing or unparseable input yields
// core.ErrInvalidGoal and no change.
func (s *LedgerService) SetGoal(ctx context.Context, month, target string) (core.Goal, error) {
	g, err := core.NewGoal(month, target)
	if err != nil {
		s.logger.WarnContext(ctx, "Goal rejected", applog.NewFields().
			WithOperation(applog.OpSetGoal).
			WithErrorType(applog.ErrorTypeValidation).
			WithError(err).ToSlice()...)
		return core.Goal{}, err
	}

	if err := s.store.UpsertGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("upsert goal: %w", err)
	}

	s.logger.InfoContext(ctx, "Goal set", applog.NewFields().WithGoal(g).WithOperation(applog.OpSetGoal).ToSlice()...)

	if s.publisher != nil {
		if err := s.publisher.PublishGoalSet(ctx, g); err != nil {
			s.logger.LogError(ctx, "Failed to publish goal event", err, applog.OpPublish, applog.NewFields().WithGoal(g))
		}
	}
	return g, nil
}

// Ledger returns a copy of the current state.
func (s *LedgerService) Ledger(ctx context.Context) (core.Ledger, error) {
	l, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("snapshot ledger: %w", err)
	}
	return l, nil
}

// Records returns all records in insertion order.
func (s *LedgerService) Records(ctx context.Context) ([]core.Record, error) {
	l, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return l.Records, nil
}

// Goals returns the goal of every month that has one.
func (s *LedgerService) Goals(ctx context.Context) (map[string]core.Goal, error) {
	l, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return l.Goals, nil
}

// Summary recomputes the monthly summaries from the current state.
func (s *LedgerService) Summary(ctx context.Context) ([]core.MonthlySummary, error) {
	l, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Summarize(l), nil
}

// Breakdown returns the month's expenses per category.
func (s *LedgerService) Breakdown(ctx context.Context, month string) ([]core.CategoryAmount, error) {
	l, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Breakdown(l, month), nil
}

// ExportCSV renders the records as the downloadable CSV document.
func (s *LedgerService) ExportCSV(ctx context.Context) (string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return "", err
	}
	return export.ToCSV(records), nil
}

// ExportSheets pushes the records to the configured spreadsheet.
func (s *LedgerService) ExportSheets(ctx context.Context) (string, error) {
	if s.sheets == nil {
		return "", ErrExportUnavailable
	}
	records, err := s.Records(ctx)
	if err != nil {
		return "", err
	}
	rng, err := s.sheets.Export(ctx, records)
	if err != nil {
		return "", fmt.Errorf("export to sheets: %w: %w", ErrExportFailed, err)
	}
	return rng, nil
}

// SheetsEnabled reports whether ExportSheets can succeed.
func (s *LedgerService) SheetsEnabled() bool { return s.sheets != nil }

// Close releases the publisher and the backend.
func (s *LedgerService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if s.cleanup != nil {
		if err := s.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("backend: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
