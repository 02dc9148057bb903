// Package stats derives aggregates from a list of expenses.
//
// Nothing is cached: every call rescans the input.
package stats

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// LabelThreshold is the minimum share a chart slice needs to carry a label.
const LabelThreshold = 0.05

type (
	// CategoryTotal is the summed amount spent in one category.
	CategoryTotal struct {
		Category string     `json:"category"`
		Total    core.Money `json:"total"`
	}

	// Slice is a CategoryTotal annotated for the breakdown chart and legend.
	Slice struct {
		CategoryTotal
		Color   string  `json:"color"`
		Share   float64 `json:"share"`
		Labeled bool    `json:"labeled"`
	}

	// Overview backs the stat cards.
	Overview struct {
		Today core.Money `json:"today"`
		Month core.Money `json:"month"`
		Count int        `json:"count"`
	}
)

// CategoryTotals sums amounts per exact category name, largest first.
// Equal totals keep the order in which their category first appeared.
func CategoryTotals(expenses []core.Expense) []CategoryTotal {
	index := map[string]int{}
	var totals []CategoryTotal
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Category: e.Category, Total: core.Money{Decimal: decimal.Zero}})
		}
		totals[i].Total = totals[i].Total.Add(e.Amount)
	}
	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Total.GreaterThan(totals[b].Total.Decimal)
	})
	return totals
}

// Breakdown computes category totals with their share of the grand total and
// display color. Slices below LabelThreshold are left unlabeled.
func Breakdown(expenses []core.Expense, colorOf func(string) string) []Slice {
	totals := CategoryTotals(expenses)
	grand := Sum(expenses)
	slices := make([]Slice, 0, len(totals))
	for _, t := range totals {
		s := Slice{CategoryTotal: t, Color: core.FallbackColor}
		if colorOf != nil {
			s.Color = colorOf(t.Category)
		}
		if grand.IsPositive() {
			s.Share = t.Total.Div(grand.Decimal).InexactFloat64()
		}
		s.Labeled = s.Share >= LabelThreshold
		slices = append(slices, s)
	}
	return slices
}

// Sum adds up every amount.
func Sum(expenses []core.Expense) core.Money {
	total := core.Money{Decimal: decimal.Zero}
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TodayTotal sums expenses dated on the calendar day of t.
func TodayTotal(expenses []core.Expense, t time.Time) core.Money {
	total := core.Money{Decimal: decimal.Zero}
	for _, e := range expenses {
		if e.Date.SameDay(t) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// MonthTotal sums expenses dated within the calendar month of t, in t's location.
func MonthTotal(expenses []core.Expense, t time.Time) core.Money {
	n := now.With(t)
	begin, end := n.BeginningOfMonth(), n.EndOfMonth()
	total := core.Money{Decimal: decimal.Zero}
	for _, e := range expenses {
		d := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, t.Location())
		if !d.Before(begin) && !d.After(end) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Summarize builds the stat-card overview as of t.
func Summarize(expenses []core.Expense, t time.Time) Overview {
	return Overview{
		Today: TodayTotal(expenses, t),
		Month: MonthTotal(expenses, t),
		Count: len(expenses),
	}
}
