package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"spendwise/internal/charts"
	"spendwise/internal/core"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/stats"
)

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.Display() },
	"pct":   func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	// swatch normalizes a stored category color to #rrggbb for a style attribute.
	"swatch": func(s string) template.CSS { return template.CSS(charts.ParseColor(s).Hex()) },
}

// expenseForm is what the add/edit form shows.
type expenseForm struct {
	ID          string
	Description string
	Amount      string
	Category    string
	Date        string
	Errors      core.ValidationErrors
}

type pageData struct {
	Overview   stats.Overview
	Slices     []stats.Slice
	Expenses   []core.Expense
	Categories []core.Category
	Today      string

	Form          expenseForm
	CategoryName  string
	CategoryError string

	Insight       string
	InsightNotice string
}

func (s *Server) newPageData() pageData {
	today := core.DateOf(s.store.Now()).String()
	return pageData{
		Overview:   s.store.Overview(),
		Slices:     s.store.Breakdown(),
		Expenses:   s.store.Expenses(),
		Categories: s.store.Categories(),
		Today:      today,
		Form:       expenseForm{Date: today},
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleIndex renders the dashboard. ?edit=<id> preloads the form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData()
	if id := r.URL.Query().Get("edit"); id != "" {
		if e, ok := s.store.Expense(id); ok {
			data.Form = expenseForm{
				ID:          e.ID,
				Description: e.Description,
				Amount:      e.Amount.Display(),
				Category:    e.Category,
				Date:        e.Date.String(),
			}
		}
	}
	s.render(w, r, http.StatusOK, data)
}

// handleExpenseForm creates an expense, or updates one when the form carries an id.
func (s *Server) handleExpenseForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := expenseFormInput(r.PostForm)
	id := r.PostForm.Get("id")

	draft, err := in.Draft(s.store.Now())
	if err != nil {
		var verrs core.ValidationErrors
		if !errors.As(err, &verrs) {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		data := s.newPageData()
		data.Form = expenseForm{
			ID:          id,
			Description: in.Description,
			Amount:      in.Amount,
			Category:    in.Category,
			Date:        in.Date,
			Errors:      verrs,
		}
		s.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if id != "" {
		s.store.UpdateExpense(r.Context(), draft.WithID(id))
	} else {
		s.store.AddExpense(r.Context(), draft)
	}
	redirectHome(w, r)
}

func (s *Server) handleDeleteExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteExpense(r.Context(), r.PathValue("id"))
	redirectHome(w, r)
}

func (s *Server) handleCategoryForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	raw := sanitizeInput(r.PostForm.Get("name"))
	name, err := core.NormalizeCategoryName(raw)
	if err != nil {
		var verrs core.ValidationErrors
		errors.As(err, &verrs)
		data := s.newPageData()
		data.CategoryName = raw
		data.CategoryError = verrs["name"]
		s.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	s.store.AddCategory(r.Context(), name)
	redirectHome(w, r)
}

// handleInsightsForm renders the dashboard with the summary or a notice.
// The ledger is never touched.
func (s *Server) handleInsightsForm(w http.ResponseWriter, r *http.Request) {
	resp, err := s.analyze(r)
	if r.Context().Err() != nil {
		return
	}

	data := s.newPageData()
	switch {
	case err == nil:
		data.Insight = resp.Summary
	case errors.Is(err, insights.ErrNotEnoughData):
		data.InsightNotice = fmt.Sprintf("Add at least %d expenses to get insights.", insights.MinTransactions)
	default:
		data.InsightNotice = insights.FailureNotice
	}
	s.render(w, r, http.StatusOK, data)
}
