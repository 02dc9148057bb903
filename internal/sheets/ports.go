// Package sheets defines the spreadsheet mirror the worker copies snapshots into.
package sheets

import (
	"context"

	"spendwise/internal/core"
)

// Ports for outbound adapters. Each write replaces the whole tab.
type (
	ExpenseMirror interface {
		WriteExpenses(ctx context.Context, expenses []core.Expense) error
	}

	CategoryMirror interface {
		WriteCategories(ctx context.Context, categories []core.Category) error
	}

	Mirror interface {
		ExpenseMirror
		CategoryMirror
	}
)
