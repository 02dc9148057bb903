package core

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxDescriptionLength bounds free-text descriptions.
const MaxDescriptionLength = 200

// EarliestDate is the oldest date an expense may carry.
var EarliestDate = NewDate(1900, 1, 1)

// ExpenseInput is the raw form or API payload for an expense, before parsing.
type ExpenseInput struct {
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ValidationErrors maps a field name to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Normalize trims surrounding whitespace from every field.
func (in ExpenseInput) Normalize() ExpenseInput {
	return ExpenseInput{
		Description: strings.TrimSpace(in.Description),
		Amount:      strings.TrimSpace(in.Amount),
		Category:    strings.TrimSpace(in.Category),
		Date:        strings.TrimSpace(in.Date),
	}
}

// Draft validates the input against today's date and returns the parsed draft.
// On failure the error is a ValidationErrors.
func (in ExpenseInput) Draft(now time.Time) (ExpenseDraft, error) {
	in = in.Normalize()
	errs := ValidationErrors{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ExpenseDraft{}, fmt.Errorf("validate expense: %w", err)
		}
		for _, fe := range verrs {
			errs[fe.Field()] = fieldMessage(fe)
		}
	}

	var draft ExpenseDraft
	draft.Description = in.Description
	draft.Category = in.Category

	if _, bad := errs["amount"]; !bad {
		amount, err := ParseAmount(in.Amount)
		if err != nil {
			errs["amount"] = "Amount must be a positive number"
		}
		draft.Amount = amount
	}

	if _, bad := errs["date"]; !bad {
		date, err := ParseDate(in.Date)
		switch {
		case err != nil:
			errs["date"] = "Date must be in YYYY-MM-DD format"
		case date.After(DateOf(now).Time):
			errs["date"] = "Date cannot be in the future"
		case date.Before(EarliestDate.Time):
			errs["date"] = "Date cannot be before 1900-01-01"
		}
		draft.Date = date
	}

	if len(errs) > 0 {
		return ExpenseDraft{}, errs
	}
	return draft, nil
}

// NormalizeCategoryName trims a submitted category name and rejects blank ones.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationErrors{"name": "Category name is required"}
	}
	if len(name) > MaxDescriptionLength {
		return "", ValidationErrors{"name": fmt.Sprintf("Category name must be at most %d characters", MaxDescriptionLength)}
	}
	return name, nil
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "datetime":
		return label + " must be in YYYY-MM-DD format"
	default:
		return label + " is invalid"
	}
}
