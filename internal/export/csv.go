// Package export serialises the ledger for download.
//
// The CSV dialect is deliberately naive: fields are joined with a comma and
// never quoted, so a comma inside a value shifts the columns. Readers of
// existing exports depend on this exact format.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"savings/internal/core"
)

const (
	// FileName is the name the ledger is offered under for download.
	FileName = "financial_records.csv"

	// Header is the fixed first line of every export.
	Header = "type,amount,category,month,tags"

	ContentType = "text/csv; charset=utf-8"
)

var ErrMalformedRow = errors.New("malformed csv row")

// ToCSV renders records in insertion order. Lines are separated by "\n" and
// there is no trailing newline. Goals are not exported.
func ToCSV(records []core.Record) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, Header)
	for _, r := range records {
		lines = append(lines, strings.Join([]string{
			r.Type.String(),
			core.FormatAmount(r.Amount),
			r.Category.String(),
			r.Month,
			r.Tags,
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// ParseCSV reads an export produced by ToCSV back into records. The first
// four fields are positional; anything after the fourth comma is the tags
// field, so tags containing commas survive the round trip.
func ParseCSV(rd io.Reader) ([]core.Record, error) {
	sc := bufio.NewScanner(rd)
	var out []core.Record
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if line == 1 {
			if strings.TrimPrefix(text, "\ufeff") != Header {
				return nil, fmt.Errorf("line 1: unexpected header %q", text)
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		r, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if line == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrMalformedRow)
	}
	return out, nil
}

func parseRow(text string) (core.Record, error) {
	fields := strings.SplitN(text, ",", 5)
	if len(fields) != 5 {
		return core.Record{}, ErrMalformedRow
	}
	t, err := core.ParseRecordType(fields[0])
	if err != nil {
		return core.Record{}, err
	}
	c, err := core.ParseCategory(fields[2])
	if err != nil {
		return core.Record{}, err
	}
	return core.NewRecord(t, fields[1], c, fields[3], fields[4])
}
