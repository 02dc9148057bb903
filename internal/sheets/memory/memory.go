// Package memory is an in-process spreadsheet mirror for dry runs and tests.
package memory

import (
	"context"
	"sync"

	"spendwise/internal/core"
	ports "spendwise/internal/sheets"
)

var _ ports.Mirror = (*Store)(nil)

type Store struct {
	mu         sync.Mutex
	expenses   []core.Expense
	categories []core.Category
	writes     int
}

func New() *Store {
	return &Store{}
}

// WriteExpenses replaces the mirrored expenses.
func (s *Store) WriteExpenses(_ context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append([]core.Expense(nil), expenses...)
	s.writes++
	return nil
}

// WriteCategories replaces the mirrored categories.
func (s *Store) WriteCategories(_ context.Context, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]core.Category(nil), categories...)
	s.writes++
	return nil
}

func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...)
}

// Writes counts every write call since creation.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
