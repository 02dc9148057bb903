package http

import (
	"errors"
	"fmt"
	"net/http"

	"spendwise/internal/charts"
	"spendwise/internal/core"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/stats"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Expenses())
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.store.Expense(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var p expensePayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeInputError(w, r, err)
		return
	}
	draft, err := p.input().Draft(s.store.Now())
	if err != nil {
		writeInputError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddExpense(r.Context(), draft))
}

// handleUpdateExpense answers 204 when the id is unknown; the ledger is left unchanged.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var p expensePayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeInputError(w, r, err)
		return
	}
	draft, err := p.input().Draft(s.store.Now())
	if err != nil {
		writeInputError(w, r, err)
		return
	}
	e := draft.WithID(r.PathValue("id"))
	if !s.store.UpdateExpense(r.Context(), e) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleDeleteExpense answers 204 whether or not the id existed.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteExpense(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleReplaceExpenses overwrites the ledger with a full list of records.
func (s *Server) handleReplaceExpenses(w http.ResponseWriter, r *http.Request) {
	var list []core.Expense
	if err := decodeJSON(w, r, &list); err != nil {
		writeInputError(w, r, err)
		return
	}
	for i, e := range list {
		if e.ID == "" {
			writeInputError(w, r, core.ValidationErrors{fmt.Sprintf("[%d].id", i): "ID is required"})
			return
		}
		if err := e.Validate(); err != nil {
			writeInputError(w, r, core.ValidationErrors{fmt.Sprintf("[%d]", i): err.Error()})
			return
		}
	}
	s.store.ReplaceExpenses(r.Context(), list)
	writeJSON(w, http.StatusOK, s.store.Expenses())
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Categories())
}

// handleAddCategory answers 201 for a new category and 200 with the
// existing one for a case-insensitive duplicate.
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeInputError(w, r, err)
		return
	}
	name, err := core.NormalizeCategoryName(sanitizeInput(p.Name))
	if err != nil {
		writeInputError(w, r, err)
		return
	}
	c, added := s.store.AddCategory(r.Context(), name)
	if !added {
		writeJSON(w, http.StatusOK, c)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleReplaceCategories(w http.ResponseWriter, r *http.Request) {
	var list []core.Category
	if err := decodeJSON(w, r, &list); err != nil {
		writeInputError(w, r, err)
		return
	}
	for i, c := range list {
		name, err := core.NormalizeCategoryName(sanitizeInput(c.Name))
		if err != nil {
			var verrs core.ValidationErrors
			errors.As(err, &verrs)
			writeInputError(w, r, core.ValidationErrors{fmt.Sprintf("[%d].name", i): verrs["name"]})
			return
		}
		list[i].Name = name
	}
	// The registry drops case-insensitive duplicates and colors blank entries.
	s.store.ReplaceCategories(r.Context(), list)
	writeJSON(w, http.StatusOK, s.store.Categories())
}

func (s *Server) handleResetCategories(w http.ResponseWriter, r *http.Request) {
	s.store.ResetCategories(r.Context())
	writeJSON(w, http.StatusOK, s.store.Categories())
}

type statsResponse struct {
	stats.Overview
	Breakdown []stats.Slice `json:"breakdown"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Overview:  s.store.Overview(),
		Breakdown: s.store.Breakdown(),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	resp, err := s.analyze(r)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, insights.ErrNotEnoughData):
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("at least %d expenses are needed for insights", insights.MinTransactions))
	case r.Context().Err() != nil:
		// The client went away; nobody reads this.
		w.WriteHeader(http.StatusRequestTimeout)
	default:
		writeError(w, http.StatusBadGateway, insights.FailureNotice)
	}
}

func (s *Server) analyze(r *http.Request) (insights.Response, error) {
	if s.insights == nil {
		return insights.Response{}, insights.ErrAnalysisFailed
	}
	resp, err := s.insights.Analyze(r.Context(), s.store.Transactions())
	if err != nil && !errors.Is(err, insights.ErrNotEnoughData) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Insight request failed",
			log.FieldError, err, log.FieldOperation, log.OpSummarize)
	}
	return resp, err
}

// handleChart renders the category breakdown as a PNG. With no expenses
// there is nothing to draw and it answers 404.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	png, err := charts.RenderBreakdown(s.store.Breakdown())
	if errors.Is(err, charts.ErrNoData) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart rendering failed",
			log.FieldError, err, log.FieldOperation, log.OpRender)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
