package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"savings/internal/core"
	"savings/internal/export"
	"savings/internal/ledger/memory"
	applog "savings/internal/log"
	"savings/internal/services"
)

// goalFlags collects repeated -goal month=target flags.
type goalFlags []string

func (g *goalFlags) String() string { return strings.Join(*g, ",") }

func (g *goalFlags) Set(v string) error {
	month, target, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(month) == "" || strings.TrimSpace(target) == "" {
		return fmt.Errorf("goal %q: want month=target", v)
	}
	*g = append(*g, v)
	return nil
}

// readRecords parses the CSV file at name, or stdin when name is "-".
func readRecords(name string) ([]core.Record, error) {
	if name == "-" {
		return export.ParseCSV(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ParseCSV(f)
}

// replay rebuilds a session ledger from records and goal flags through the
// same service the server uses, so the same validation applies.
func replay(ctx context.Context, records []core.Record, goals goalFlags, logOut io.Writer) (*services.LedgerService, error) {
	logger := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentReport,
		Output:    logOut,
	})
	svc := services.NewLedgerService(memory.New(), services.WithLogger(logger))

	for i, r := range records {
		if _, err := svc.AddRecord(ctx, r.Type, core.FormatAmount(r.Amount), r.Category, r.Month, r.Tags); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	for _, g := range goals {
		month, target, _ := strings.Cut(g, "=")
		if _, err := svc.SetGoal(ctx, strings.TrimSpace(month), strings.TrimSpace(target)); err != nil {
			return nil, fmt.Errorf("goal %q: %w", g, err)
		}
	}
	return svc, nil
}
