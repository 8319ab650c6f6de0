// Package report renders a ledger as a markdown document.
package report

import (
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"savings/internal/core"
	"savings/internal/summary"
)

var (
	summaryHeader = []string{"Month", "Income", "Expense", "Net", "Goal", "Status"}
	summaryAlign  = []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft}

	breakdownHeader = []string{"Category", "Amount"}
	breakdownAlign  = []md.TableAlignment{md.AlignLeft, md.AlignRight}
)

// Markdown renders the monthly summary of l followed by the expense
// breakdown of every month. Amounts are shown in currencyCode.
func Markdown(l core.Ledger, currencyCode string) (string, error) {
	var b strings.Builder
	doc := md.NewMarkdown(&b)
	sums := summary.Summarize(l)

	doc.H1("Monthly summary").PlainText("")
	if len(sums) == 0 {
		doc.PlainText("No records.")
		return build(doc, &b)
	}

	rows := make([][]string, 0, len(sums)+1)
	var income, expense float64
	for _, m := range sums {
		income += m.Income
		expense += m.Expense

		goal := "-"
		if m.Goal != nil {
			goal = FormatMoney(m.Goal.TargetAmount, currencyCode)
		}
		rows = append(rows, []string{
			escapeCell(m.Month),
			FormatMoney(m.Income, currencyCode),
			FormatMoney(m.Expense, currencyCode),
			FormatMoney(m.Net, currencyCode),
			goal,
			goalStatus(m.MetGoal),
		})
	}
	rows = append(rows, []string{
		md.Bold("Total"),
		md.Bold(FormatMoney(income, currencyCode)),
		md.Bold(FormatMoney(expense, currencyCode)),
		md.Bold(FormatMoney(income-expense, currencyCode)),
		"",
		"",
	})
	doc.Table(md.TableSet{Header: summaryHeader, Rows: rows, Alignment: summaryAlign})

	for _, m := range sums {
		cats := summary.Breakdown(l, m.Month)
		if len(cats) == 0 {
			continue
		}
		catRows := make([][]string, 0, len(cats))
		for _, c := range cats {
			catRows = append(catRows, []string{string(c.Category), FormatMoney(c.Amount, currencyCode)})
		}
		doc.H2f("Expenses for month %s", escapeCell(m.Month)).PlainText("")
		doc.Table(md.TableSet{Header: breakdownHeader, Rows: catRows, Alignment: breakdownAlign})
	}

	return build(doc, &b)
}

func build(doc *md.Markdown, b *strings.Builder) (string, error) {
	if err := doc.Build(); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

func goalStatus(met *bool) string {
	switch {
	case met == nil:
		return "-"
	case *met:
		return "met"
	default:
		return "missed"
	}
}

// escapeCell keeps free-text month keys from breaking the table. The table
// writer emits cells verbatim.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
