package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire and in storage.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without time of day, normalized to UTC midnight.
	Date struct {
		time.Time
	}

	// Expense is a single recorded transaction held by the ledger.
	Expense struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"` // name only, no existence constraint
		Date        Date   `json:"date"`
	}

	// ExpenseDraft carries every Expense field except the ID, which the ledger assigns.
	ExpenseDraft struct {
		Description string
		Amount      Money
		Category    string
		Date        Date
	}

	// Transaction is the description and amount of an expense, as sent for analysis.
	Transaction struct {
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
	}

	// Category is a named spending category with its display color.
	Category struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// FallbackColor is shown for categories the registry does not know.
const FallbackColor = "hsl(0, 0%, 60%)"

// DefaultCategories returns a fresh copy of the seven built-in categories.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food", Color: "hsl(10, 80%, 60%)"},
		{Name: "Transportation", Color: "hsl(200, 80%, 60%)"},
		{Name: "Entertainment", Color: "hsl(300, 80%, 60%)"},
		{Name: "Shopping", Color: "hsl(50, 80%, 60%)"},
		{Name: "Bills", Color: "hsl(250, 80%, 60%)"},
		{Name: "Health", Color: "hsl(150, 80%, 60%)"},
		{Name: "Other", Color: FallbackColor},
	}
}

// Palette returns the colors assigned to user-created categories, in rotation order.
func Palette() []string {
	return []string{
		"hsl(180, 80%, 60%)",
		"hsl(220, 80%, 60%)",
		"hsl(340, 80%, 60%)",
		"hsl(20, 80%, 60%)",
		"hsl(80, 60%, 55%)",
		"hsl(280, 70%, 65%)",
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// SameDay reports whether d falls on the calendar day of t (in t's location).
func (d Date) SameDay(t time.Time) bool {
	y, m, dd := t.Date()
	return d.Year() == y && d.Month() == m && d.Day() == dd
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	// Accept full timestamps too; only the date part is kept.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Draft returns the non-id fields of e.
func (e Expense) Draft() ExpenseDraft {
	return ExpenseDraft{
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
	}
}

// WithID builds the full record for a draft.
func (d ExpenseDraft) WithID(id string) Expense {
	return Expense{
		ID:          id,
		Description: d.Description,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
	}
}

// Validate checks the fields every stored expense must carry.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Date.Validate()
}

// Equal compares two expenses field by field, amounts by numeric value.
func (e Expense) Equal(o Expense) bool {
	return e.ID == o.ID &&
		e.Description == o.Description &&
		e.Amount.Equal(o.Amount) &&
		e.Category == o.Category &&
		e.Date.Equal(o.Date.Time)
}

// TransactionsOf projects expenses to description/amount pairs, keeping order.
func TransactionsOf(expenses []Expense) []Transaction {
	out := make([]Transaction, len(expenses))
	for i, e := range expenses {
		out[i] = Transaction{Description: e.Description, Amount: e.Amount}
	}
	return out
}
