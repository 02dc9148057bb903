package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestExpenseInputDraft(t *testing.T) {
	in := ExpenseInput{Description: "  Lunch ", Amount: "12,50", Category: " Food ", Date: "2024-06-15"}
	draft, err := in.Draft(today)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", draft.Description)
	assert.Equal(t, "Food", draft.Category)
	assert.Equal(t, "12.5", draft.Amount.String())
	assert.Equal(t, NewDate(2024, 6, 15), draft.Date)
}

func TestExpenseInputDraftErrors(t *testing.T) {
	valid := ExpenseInput{Description: "Lunch", Amount: "10", Category: "Food", Date: "2024-06-01"}

	cases := []struct {
		name   string
		mutate func(*ExpenseInput)
		field  string
		msg    string
	}{
		{"blank description", func(in *ExpenseInput) { in.Description = "   " }, "description", "Description is required"},
		{"long description", func(in *ExpenseInput) { in.Description = strings.Repeat("x", 201) }, "description", "Description must be at most 200 characters"},
		{"missing amount", func(in *ExpenseInput) { in.Amount = "" }, "amount", "Amount is required"},
		{"negative amount", func(in *ExpenseInput) { in.Amount = "-3" }, "amount", "Amount must be a positive number"},
		{"zero amount", func(in *ExpenseInput) { in.Amount = "0" }, "amount", "Amount must be a positive number"},
		{"missing category", func(in *ExpenseInput) { in.Category = "" }, "category", "Category is required"},
		{"bad date", func(in *ExpenseInput) { in.Date = "June 1" }, "date", "Date must be in YYYY-MM-DD format"},
		{"future date", func(in *ExpenseInput) { in.Date = "2024-06-16" }, "date", "Date cannot be in the future"},
		{"ancient date", func(in *ExpenseInput) { in.Date = "1899-12-31" }, "date", "Date cannot be before 1900-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := in.Draft(today)
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tc.msg, verrs[tc.field])
			assert.Len(t, verrs, 1)
		})
	}
}

func TestExpenseInputCollectsAllErrors(t *testing.T) {
	_, err := ExpenseInput{}.Draft(today)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 4)
	assert.Contains(t, err.Error(), "amount: Amount is required")
}

func TestNormalizeCategoryName(t *testing.T) {
	name, err := NormalizeCategoryName("  Pets ")
	require.NoError(t, err)
	assert.Equal(t, "Pets", name)

	_, err = NormalizeCategoryName("   ")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Category name is required", verrs["name"])
}
