package google

import (
	"spendwise/internal/core"
)

var (
	expenseHeader  = []any{"ID", "Date", "Description", "Category", "Amount"}
	categoryHeader = []any{"Name", "Color"}
)

// expenseRows renders a header row plus one row per expense, in ledger order.
func expenseRows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, expenseHeader)
	for _, e := range expenses {
		rows = append(rows, []any{e.ID, e.Date.String(), e.Description, e.Category, e.Amount.StringFixed(2)})
	}
	return rows
}

func categoryRows(categories []core.Category) [][]any {
	rows := make([][]any, 0, len(categories)+1)
	rows = append(rows, categoryHeader)
	for _, c := range categories {
		rows = append(rows, []any{c.Name, c.Color})
	}
	return rows
}
