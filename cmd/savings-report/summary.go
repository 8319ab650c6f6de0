package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"savings/internal/config"
	"savings/internal/report"
)

type summaryCmd struct {
	in       string
	currency string
	raw      bool
	style    string
	goals    goalFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the monthly summary of an exported ledger" }
func (*summaryCmd) Usage() string {
	return `summary -in <financial_records.csv> [-goal <month>=<target> ...] [-currency <code>] [-raw]

  Replays an exported ledger, applies the given monthly goals and prints
  income, expense, net and goal attainment per month followed by the
  expense breakdown by category.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "financial_records.csv", "Exported ledger CSV, or - for stdin")
	f.StringVar(&c.currency, "currency", config.Load().Currency, "Display currency, 3-letter code")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown instead of styled output")
	f.StringVar(&c.style, "style", "dark", "Glamour style used for styled output")
	f.Var(&c.goals, "goal", "Monthly goal as month=target (repeatable)")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := readRecords(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger %q: %v\n", c.in, err)
		return subcommands.ExitFailure
	}

	svc, err := replay(ctx, records, c.goals, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer svc.Close()

	l, err := svc.Ledger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	md, err := report.Markdown(l, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}

	out, err := glamour.Render(md, c.style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering markdown: %v\n", err)
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
