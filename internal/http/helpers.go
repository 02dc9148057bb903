package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

// sanitizeInput removes control characters except tab and newlines, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeInputError maps a parse or validation failure to 400 or 422.
func writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Validation failed", log.FieldError, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verrs})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
