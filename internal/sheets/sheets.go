// Package sheets pushes the ledger export to a Google Sheet.
//
// The sheet receives the same rows as the CSV download: a header line and one
// row per record in insertion order. A full export replaces the previous
// content of the target sheet; AppendRecord adds a single row.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"savings/internal/core"
)

var ErrNotConfigured = errors.New("sheets export not configured")

// Exporter writes ledger rows to one sheet of a spreadsheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Credentials resolves service account credentials from inline JSON or a
// file path, preferring the inline value.
func Credentials(inlineJSON, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inlineJSON) != "":
		return []byte(inlineJSON), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// NewExporter creates a Sheets service authenticated with a service account.
func NewExporter(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*Exporter, error) {
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets exporter ready", "spreadsheet_id", spreadsheetID, "sheet", sheetName)
	return NewExporterWithService(svc, spreadsheetID, sheetName)
}

// NewExporterWithService wraps an existing service, e.g. one pointed at a
// test endpoint.
func NewExporterWithService(svc *gsheet.Service, spreadsheetID, sheetName string) (*Exporter, error) {
	if spreadsheetID == "" || sheetName == "" {
		return nil, ErrNotConfigured
	}
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Export replaces the sheet content with the given records and returns the
// updated range.
func (e *Exporter) Export(ctx context.Context, records []core.Record) (string, error) {
	if e == nil || e.svc == nil {
		return "", ErrNotConfigured
	}

	all := fmt.Sprintf("%s!A:E", quoteSheet(e.sheetName))
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, all, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", all, err)
	}

	rng := fmt.Sprintf("%s!A1:E%d", quoteSheet(e.sheetName), len(records)+1)
	resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, &gsheet.ValueRange{Values: Rows(records)}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Ledger exported to Google Sheets",
		"range", resp.UpdatedRange,
		"rows", len(records))

	if resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return rng, nil
}

// AppendRecord adds one record as a new row below the existing content and
// returns the written range.
func (e *Exporter) AppendRecord(ctx context.Context, r core.Record) (string, error) {
	if e == nil || e.svc == nil {
		return "", ErrNotConfigured
	}

	all := fmt.Sprintf("%s!A:E", quoteSheet(e.sheetName))
	row := Rows([]core.Record{r})[1:]
	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, all, &gsheet.ValueRange{Values: row}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", all, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return all, nil
}

// Rows mirrors the CSV export: header first, then one row per record.
// Amounts stay numeric so the sheet can sum them.
func Rows(records []core.Record) [][]any {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, []any{"type", "amount", "category", "month", "tags"})
	for _, r := range records {
		rows = append(rows, []any{string(r.Type), r.Amount, string(r.Category), r.Month, r.Tags})
	}
	return rows
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
