package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	in  string
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "re-emit an exported ledger in canonical form" }
func (*exportCmd) Usage() string {
	return `export -in <financial_records.csv> [-out <file>]

  Parses an exported ledger, validates every record and writes it back
  with amounts in their shortest decimal form.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "financial_records.csv", "Exported ledger CSV, or - for stdin")
	f.StringVar(&c.out, "out", "-", "Destination file, or - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := readRecords(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger %q: %v\n", c.in, err)
		return subcommands.ExitFailure
	}

	svc, err := replay(ctx, records, nil, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer svc.Close()

	csv, err := svc.ExportCSV(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeOutput(c.out, csv); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeOutput(name, content string) error {
	if name == "-" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	return os.WriteFile(name, []byte(content), 0o644)
}
