// Package summary derives the monthly rollup of a ledger.
//
// Everything here is a pure function of its input: no caching, no clock, no
// randomness. Callers recompute on every read.
package summary

import "savings/internal/core"

type totals struct {
	income  float64
	expense float64
}

// Summarize groups l.Records by month and evaluates each month's goal.
//
// Months appear in the order they are first seen in the record sequence.
// A month that only has a goal and no records produces no entry. Amounts
// are summed as float64 without rounding.
func Summarize(l core.Ledger) []core.MonthlySummary {
	var order []string
	acc := map[string]*totals{}
	for _, r := range l.Records {
		t, ok := acc[r.Month]
		if !ok {
			t = &totals{}
			acc[r.Month] = t
			order = append(order, r.Month)
		}
		if r.IsIncome() {
			t.income += r.Amount
		} else {
			t.expense += r.Amount
		}
	}

	out := make([]core.MonthlySummary, 0, len(order))
	for _, month := range order {
		t := acc[month]
		ms := core.MonthlySummary{
			Month:   month,
			Income:  t.income,
			Expense: t.expense,
			Net:     t.income - t.expense,
		}
		if g, ok := l.Goals[month]; ok {
			met := ms.Net >= g.TargetAmount
			ms.Goal = &g
			ms.MetGoal = &met
		}
		out = append(out, ms)
	}
	return out
}

// Breakdown returns the expense total per category for one month, in the
// order each category first appears. Income records are ignored.
func Breakdown(l core.Ledger, month string) []core.CategoryAmount {
	var out []core.CategoryAmount
	idx := map[core.Category]int{}
	for _, r := range l.Records {
		if r.Month != month || r.IsIncome() {
			continue
		}
		i, ok := idx[r.Category]
		if !ok {
			i = len(out)
			idx[r.Category] = i
			out = append(out, core.CategoryAmount{Category: r.Category})
		}
		out[i].Amount += r.Amount
	}
	return out
}
