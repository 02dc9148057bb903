package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"spendwise/internal/core"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// flexString accepts a JSON string or number. API clients send amounts both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// expensePayload is the JSON body for creating or updating one expense.
type expensePayload struct {
	Description string     `json:"description"`
	Amount      flexString `json:"amount"`
	Category    string     `json:"category"`
	Date        string     `json:"date"`
}

func (p expensePayload) input() core.ExpenseInput {
	return core.ExpenseInput{
		Description: sanitizeInput(p.Description),
		Amount:      string(p.Amount),
		Category:    sanitizeInput(p.Category),
		Date:        p.Date,
	}
}

type categoryPayload struct {
	Name string `json:"name"`
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// expenseFormInput extracts the expense fields from a submitted form.
func expenseFormInput(form url.Values) core.ExpenseInput {
	return core.ExpenseInput{
		Description: sanitizeInput(form.Get("description")),
		Amount:      strings.TrimSpace(form.Get("amount")),
		Category:    sanitizeInput(form.Get("category")),
		Date:        strings.TrimSpace(form.Get("date")),
	}
}

// parseForm parses a urlencoded body with the same size bound as JSON.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return r.ParseForm()
}
