package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func TestStoreReplacesSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := []core.Expense{{ID: "1", Description: "a"}, {ID: "2", Description: "b"}}
	require.NoError(t, s.WriteExpenses(ctx, first))
	require.NoError(t, s.WriteExpenses(ctx, first[:1]))
	assert.Len(t, s.Expenses(), 1)

	require.NoError(t, s.WriteCategories(ctx, core.DefaultCategories()))
	assert.Equal(t, core.DefaultCategories(), s.Categories())
	assert.Equal(t, 3, s.Writes())
}

func TestStoreCopiesInput(t *testing.T) {
	ctx := context.Background()
	s := New()
	cats := []core.Category{{Name: "Food", Color: "x"}}
	require.NoError(t, s.WriteCategories(ctx, cats))
	cats[0].Name = "changed"
	assert.Equal(t, "Food", s.Categories()[0].Name)
}
