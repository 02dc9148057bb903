// Package ledger holds the ordered collection of recorded expenses.
//
// A Ledger is a plain data structure with no locking; the session store
// serializes access to it.
package ledger

import (
	"github.com/google/uuid"

	"spendwise/internal/core"
)

// IDGenerator returns a fresh expense identifier.
type IDGenerator func() string

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(gen IDGenerator) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// Ledger keeps expenses newest-first.
type Ledger struct {
	items []core.Expense
	newID IDGenerator
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{newID: func() string { return uuid.NewString() }}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add assigns a fresh id to draft, prepends it and returns the stored record.
// No validation happens here.
func (l *Ledger) Add(draft core.ExpenseDraft) core.Expense {
	id := l.newID()
	for l.indexOf(id) >= 0 {
		id = l.newID()
	}
	e := draft.WithID(id)
	l.items = append([]core.Expense{e}, l.items...)
	return e
}

// Update replaces the non-id fields of the record sharing e.ID.
// It reports false and leaves the ledger untouched when no such record exists.
func (l *Ledger) Update(e core.Expense) bool {
	i := l.indexOf(e.ID)
	if i < 0 {
		return false
	}
	l.items[i] = e
	return true
}

// Delete removes the record with the given id, reporting whether one was found.
func (l *Ledger) Delete(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return true
}

// ReplaceAll overwrites the ledger with expenses, keeping their order.
// When ids repeat only the first occurrence is kept.
func (l *Ledger) ReplaceAll(expenses []core.Expense) {
	seen := make(map[string]struct{}, len(expenses))
	items := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		items = append(items, e)
	}
	l.items = items
}

// List returns a copy of the current contents.
func (l *Ledger) List() []core.Expense {
	out := make([]core.Expense, len(l.items))
	copy(out, l.items)
	return out
}

// Get returns the record with the given id.
func (l *Ledger) Get(id string) (core.Expense, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return l.items[i], true
}

func (l *Ledger) Len() int {
	return len(l.items)
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
