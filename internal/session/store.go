// Package session owns the expense ledger and category registry for the
// running process and persists them to a KV store after every mutation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"spendwise/internal/category"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/log"
	"spendwise/internal/metrics"
	"spendwise/internal/stats"
	"spendwise/internal/storage"
)

// Notifier is told about every snapshot that reached the KV store.
type Notifier interface {
	NotifySnapshot(ctx context.Context, key string, count int) error
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentSession)
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock replaces time.Now for the date-relative reads.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLedgerOptions(opts ...ledger.Option) Option {
	return func(s *Store) { s.ledgerOpts = append(s.ledgerOpts, opts...) }
}

func WithCategoryOptions(opts ...category.Option) Option {
	return func(s *Store) { s.categoryOpts = append(s.categoryOpts, opts...) }
}

// Store guards one Ledger and one Registry. Memory is authoritative;
// the KV copy is best effort.
type Store struct {
	mu         sync.RWMutex
	ledger     *ledger.Ledger
	categories *category.Registry

	kv       storage.KV
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time

	ledgerOpts   []ledger.Option
	categoryOpts []category.Option

	writeFailures int
}

// Open loads both collections from kv. It never fails: a missing or
// malformed expenses snapshot yields an empty ledger, and a missing or
// malformed categories snapshot yields the default categories.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: log.Wrap(nil, log.ComponentSession),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.New(s.ledgerOpts...)
	s.categories = category.New(s.categoryOpts...)

	var expenses []core.Expense
	if s.load(ctx, storage.KeyExpenses, &expenses) {
		s.ledger.ReplaceAll(expenses)
	}

	var categories []core.Category
	if s.load(ctx, storage.KeyCategories, &categories) && categories != nil {
		s.categories.ReplaceAll(categories)
	}

	metrics.SetItems(storage.KeyExpenses, s.ledger.Len())
	metrics.SetItems(storage.KeyCategories, s.categories.Len())
	s.logger.InfoContext(ctx, "Session loaded",
		"expenses", s.ledger.Len(),
		"categories", s.categories.Len())
	return s
}

// load decodes key into dst and reports whether dst should be used.
func (s *Store) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			metrics.RecordLoadFallback(key)
			s.logger.WarnContext(ctx, "Failed to read snapshot, using defaults",
				log.FieldKey, key, log.FieldError, err, log.FieldOperation, log.OpLoad)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.RecordLoadFallback(key)
		s.logger.WarnContext(ctx, "Malformed snapshot, using defaults",
			log.FieldKey, key, log.FieldError, err, log.FieldOperation, log.OpLoad)
		return false
	}
	return true
}

// save writes the whole collection for key. Must be called with mu held.
func (s *Store) save(ctx context.Context, key string) {
	var (
		payload any
		count   int
	)
	switch key {
	case storage.KeyExpenses:
		list := s.ledger.List()
		payload, count = list, len(list)
	case storage.KeyCategories:
		list := s.categories.List()
		payload, count = list, len(list)
	default:
		return
	}
	metrics.SetItems(key, count)

	data, err := json.Marshal(payload)
	if err == nil {
		err = s.kv.Put(ctx, key, data)
	}
	metrics.RecordWrite(key, err == nil)
	if err != nil {
		s.writeFailures++
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldKey, key, log.FieldError, err, log.FieldOperation, log.OpSave)
		return
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySnapshot(ctx, key, count); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish snapshot notification",
				log.FieldKey, key, log.FieldError, err)
		}
	}
}

// AddExpense stores draft under a fresh id and returns the stored record.
func (s *Store) AddExpense(ctx context.Context, draft core.ExpenseDraft) core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ledger.Add(draft)
	s.save(ctx, storage.KeyExpenses)
	s.logger.InfoContext(ctx, "Expense added",
		log.FieldExpenseID, e.ID, log.FieldCategory, e.Category, log.FieldAmount, e.Amount.String())
	return e
}

// UpdateExpense replaces the record with e.ID. It reports false, and skips
// the save, when no such record exists.
func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.Update(e) {
		s.logger.DebugContext(ctx, "Update of unknown expense ignored", log.FieldExpenseID, e.ID)
		return false
	}
	s.save(ctx, storage.KeyExpenses)
	return true
}

// DeleteExpense removes the record with id, reporting whether it existed.
func (s *Store) DeleteExpense(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.Delete(id) {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", log.FieldExpenseID, id)
		return false
	}
	s.save(ctx, storage.KeyExpenses)
	return true
}

// ReplaceExpenses overwrites the ledger.
func (s *Store) ReplaceExpenses(ctx context.Context, expenses []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.ReplaceAll(expenses)
	s.save(ctx, storage.KeyExpenses)
}

// AddCategory registers name, or returns the existing case-insensitive match with false.
func (s *Store) AddCategory(ctx context.Context, name string) (core.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, added := s.categories.Add(name)
	if !added {
		return c, false
	}
	s.save(ctx, storage.KeyCategories)
	return c, true
}

func (s *Store) ReplaceCategories(ctx context.Context, categories []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.ReplaceAll(categories)
	s.save(ctx, storage.KeyCategories)
}

// ResetCategories restores the defaults.
func (s *Store) ResetCategories(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.Reset()
	s.save(ctx, storage.KeyCategories)
}

// Expenses returns the ledger contents, newest first.
func (s *Store) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.List()
}

// Expense looks up a single record.
func (s *Store) Expense(id string) (core.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Get(id)
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.List()
}

// ColorOf resolves a category color by exact name.
func (s *Store) ColorOf(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.ColorOf(name)
}

// Overview computes the stat cards as of the store clock.
func (s *Store) Overview() stats.Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.Summarize(s.ledger.List(), s.now())
}

// Breakdown computes the per-category chart slices.
func (s *Store) Breakdown() []stats.Slice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.Breakdown(s.ledger.List(), s.categories.ColorOf)
}

// Transactions projects the ledger to what the summarizer needs.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TransactionsOf(s.ledger.List())
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// WriteFailures counts snapshot writes that did not reach the KV store.
func (s *Store) WriteFailures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeFailures
}

// Ping checks that the KV store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
