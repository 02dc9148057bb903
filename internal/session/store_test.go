package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/storage"
)

type failingKV struct {
	*storage.Memory
	getErr error
	putErr error
	puts   int
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	return f.Memory.Put(ctx, key, value)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (n *recordingNotifier) NotifySnapshot(_ context.Context, key string, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, fmt.Sprintf("%s:%d", key, count))
	return n.err
}

func sequentialIDs() ledger.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func draft(desc string, cents int64, cat string, date core.Date) core.ExpenseDraft {
	return core.ExpenseDraft{Description: desc, Amount: core.MoneyFromCents(cents), Category: cat, Date: date}
}

func decodeExpenses(t *testing.T, kv storage.KV) []core.Expense {
	t.Helper()
	raw, err := kv.Get(context.Background(), storage.KeyExpenses)
	require.NoError(t, err)
	var out []core.Expense
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestOpenEmptyStoreUsesDefaults(t *testing.T) {
	s := Open(context.Background(), storage.NewMemory())
	assert.Empty(t, s.Expenses())
	assert.Equal(t, core.DefaultCategories(), s.Categories())
}

func TestOpenLoadsSnapshots(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, storage.KeyExpenses, []byte(
		`[{"id":"a","description":"Lunch","amount":12.5,"category":"Food","date":"2024-06-15"}]`)))
	require.NoError(t, kv.Put(ctx, storage.KeyCategories, []byte(
		`[{"name":"Rent","color":"hsl(1, 2%, 3%)"}]`)))

	s := Open(ctx, kv)
	require.Len(t, s.Expenses(), 1)
	assert.Equal(t, "Lunch", s.Expenses()[0].Description)
	assert.Equal(t, []core.Category{{Name: "Rent", Color: "hsl(1, 2%, 3%)"}}, s.Categories())
}

func TestOpenFallsBackOnMalformedData(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, storage.KeyExpenses, []byte(`{not json`)))
	require.NoError(t, kv.Put(ctx, storage.KeyCategories, []byte(`42`)))

	s := Open(ctx, kv)
	assert.Empty(t, s.Expenses())
	assert.Equal(t, core.DefaultCategories(), s.Categories())
}

func TestOpenFallsBackOnNullCategories(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, storage.KeyCategories, []byte(`null`)))
	assert.Equal(t, core.DefaultCategories(), Open(ctx, kv).Categories())
}

func TestOpenSurvivesReadErrors(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory(), getErr: errors.New("backend down")}
	s := Open(context.Background(), kv)
	assert.Empty(t, s.Expenses())
	assert.Len(t, s.Categories(), 7)
}

func TestMutationsSaveWholeCollection(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, kv, WithLedgerOptions(ledger.WithIDGenerator(sequentialIDs())))

	a := s.AddExpense(ctx, draft("a", 100, "Food", core.NewDate(2024, 6, 1)))
	b := s.AddExpense(ctx, draft("b", 200, "Bills", core.NewDate(2024, 6, 2)))
	saved := decodeExpenses(t, kv)
	require.Len(t, saved, 2)
	assert.Equal(t, b.ID, saved[0].ID)

	b.Description = "b2"
	require.True(t, s.UpdateExpense(ctx, b))
	assert.Equal(t, "b2", decodeExpenses(t, kv)[0].Description)

	require.True(t, s.DeleteExpense(ctx, a.ID))
	assert.Len(t, decodeExpenses(t, kv), 1)

	s.ReplaceExpenses(ctx, nil)
	assert.Empty(t, decodeExpenses(t, kv))
}

func TestCategoryMutationsSave(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, kv)

	c, added := s.AddCategory(ctx, "Pets")
	require.True(t, added)
	raw, err := kv.Get(ctx, storage.KeyCategories)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Pets"`)
	assert.Equal(t, c.Color, s.ColorOf("Pets"))

	_, added = s.AddCategory(ctx, "pets")
	assert.False(t, added)
	assert.Len(t, s.Categories(), 8)

	s.ReplaceCategories(ctx, []core.Category{{Name: "Only", Color: "x"}})
	assert.Len(t, s.Categories(), 1)

	s.ResetCategories(ctx)
	raw, err = kv.Get(ctx, storage.KeyCategories)
	require.NoError(t, err)
	var cats []core.Category
	require.NoError(t, json.Unmarshal(raw, &cats))
	assert.Equal(t, core.DefaultCategories(), cats)
}

func TestNoopMutationsSkipSave(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Memory: storage.NewMemory()}
	s := Open(ctx, kv)

	assert.False(t, s.UpdateExpense(ctx, core.Expense{ID: "missing"}))
	assert.False(t, s.DeleteExpense(ctx, "missing"))
	_, added := s.AddCategory(ctx, "food")
	assert.False(t, added)
	assert.Equal(t, 0, kv.puts)
}

func TestWriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Memory: storage.NewMemory(), putErr: errors.New("quota exceeded")}
	n := &recordingNotifier{}
	s := Open(ctx, kv, WithNotifier(n))

	e := s.AddExpense(ctx, draft("a", 100, "Food", core.NewDate(2024, 6, 1)))
	got, ok := s.Expense(e.ID)
	require.True(t, ok)
	assert.Equal(t, e, got)
	assert.Equal(t, 1, s.WriteFailures())
	assert.Empty(t, n.events)
}

func TestNotifierReceivesSnapshotCounts(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{err: errors.New("broker gone")}
	s := Open(ctx, storage.NewMemory(), WithNotifier(n))

	s.AddExpense(ctx, draft("a", 100, "Food", core.NewDate(2024, 6, 1)))
	s.AddCategory(ctx, "Pets")
	assert.Equal(t, []string{"expenses:1", "categories:8"}, n.events)
}

func TestReadsUseStoreClock(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	s := Open(ctx, storage.NewMemory(), WithClock(func() time.Time { return fixed }))

	s.AddExpense(ctx, draft("today", 150, "Food", core.NewDate(2024, 6, 15)))
	s.AddExpense(ctx, draft("month", 1000, "Bills", core.NewDate(2024, 6, 1)))
	s.AddExpense(ctx, draft("old", 5000, "Bills", core.NewDate(2024, 5, 15)))

	ov := s.Overview()
	assert.Equal(t, "1.5", ov.Today.String())
	assert.Equal(t, "11.5", ov.Month.String())
	assert.Equal(t, 3, ov.Count)

	slices := s.Breakdown()
	require.Len(t, slices, 2)
	assert.Equal(t, "Bills", slices[0].Category)
	assert.Equal(t, s.ColorOf("Bills"), slices[0].Color)

	tx := s.Transactions()
	require.Len(t, tx, 3)
	assert.Equal(t, "old", tx[0].Description)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddExpense(ctx, draft("x", 100, "Food", core.NewDate(2024, 6, 1)))
		}()
		go func() {
			defer wg.Done()
			_ = s.Overview()
			_ = s.Breakdown()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Expenses(), 20)
}
