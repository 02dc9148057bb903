package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func draft(desc string, cents int64, category string) core.ExpenseDraft {
	return core.ExpenseDraft{
		Description: desc,
		Amount:      core.MoneyFromCents(cents),
		Category:    category,
		Date:        core.NewDate(2024, 6, 15),
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	l := New()
	ids := map[string]bool{}
	for i := 0; i < 50; i++ {
		e := l.Add(draft("item", int64(100+i), "Food"))
		require.NotEmpty(t, e.ID)
		ids[e.ID] = true
	}
	assert.Equal(t, 50, l.Len())
	assert.Len(t, ids, 50)
}

func TestAddPrepends(t *testing.T) {
	l := New(WithIDGenerator(sequentialIDs()))
	l.Add(draft("first", 100, "Food"))
	second := l.Add(draft("second", 200, "Food"))

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0])
	assert.Equal(t, "first", list[1].Description)
}

func TestAddSkipsCollidingIDs(t *testing.T) {
	ids := []string{"a", "a", "b"}
	i := 0
	l := New(WithIDGenerator(func() string { id := ids[i]; i++; return id }))
	l.Add(draft("one", 100, "Food"))
	e := l.Add(draft("two", 100, "Food"))
	assert.Equal(t, "b", e.ID)
}

func TestUpdateReplacesOnlyMatchingRecord(t *testing.T) {
	l := New(WithIDGenerator(sequentialIDs()))
	a := l.Add(draft("a", 100, "Food"))
	b := l.Add(draft("b", 200, "Bills"))

	changed := b
	changed.Description = "b2"
	changed.Amount = core.MoneyFromCents(999)
	require.True(t, l.Update(changed))

	got, ok := l.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, "b2", got.Description)
	assert.True(t, got.Amount.Equal(core.MoneyFromCents(999)))

	other, _ := l.Get(a.ID)
	assert.Equal(t, a, other)
	assert.Equal(t, 2, l.Len())
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	l := New(WithIDGenerator(sequentialIDs()))
	l.Add(draft("a", 100, "Food"))
	before := l.List()

	ok := l.Update(core.Expense{ID: "missing", Description: "x"})
	assert.False(t, ok)
	assert.Equal(t, before, l.List())
}

func TestDeleteIsIdempotent(t *testing.T) {
	l := New(WithIDGenerator(sequentialIDs()))
	a := l.Add(draft("a", 100, "Food"))
	b := l.Add(draft("b", 200, "Food"))

	assert.True(t, l.Delete(a.ID))
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Delete(a.ID))
	assert.Equal(t, []core.Expense{b}, l.List())
}

func TestReplaceAllThenList(t *testing.T) {
	l := New()
	l.Add(draft("old", 100, "Food"))

	input := []core.Expense{
		draft("x", 100, "Food").WithID("1"),
		draft("y", 200, "Bills").WithID("2"),
	}
	l.ReplaceAll(input)
	assert.Equal(t, input, l.List())
}

func TestReplaceAllKeepsFirstDuplicate(t *testing.T) {
	l := New()
	l.ReplaceAll([]core.Expense{
		draft("x", 100, "Food").WithID("1"),
		draft("dup", 300, "Food").WithID("1"),
		draft("y", 200, "Bills").WithID("2"),
	})
	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, "x", list[0].Description)
	assert.Equal(t, "2", list[1].ID)
}

func TestListReturnsCopy(t *testing.T) {
	l := New(WithIDGenerator(sequentialIDs()))
	l.Add(draft("a", 100, "Food"))
	list := l.List()
	list[0].Description = "mutated"
	got, _ := l.Get("id-1")
	assert.Equal(t, "a", got.Description)
}
