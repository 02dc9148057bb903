// Package insights asks a language model for a natural-language summary of
// spending. The ledger is never modified here.
package insights

import (
	"context"
	"errors"
	"time"

	"spendwise/internal/core"
)

// MinTransactions is the smallest ledger worth analyzing.
const MinTransactions = 5

// FailureNotice is the only failure text shown to users.
const FailureNotice = "Something went wrong while analyzing your spending. Please try again."

var (
	ErrNotEnoughData  = errors.New("not enough transactions to analyze")
	ErrAnalysisFailed = errors.New("spending analysis failed")
)

type (
	// Request is the summarization input.
	Request struct {
		Transactions []core.Transaction `json:"transactions"`
	}

	// Response is the summarization output.
	Response struct {
		Summary string `json:"summary"`
	}

	// Summarizer turns transactions into a summary. Implementations talk to a
	// remote model and may be slow.
	Summarizer interface {
		Summarize(ctx context.Context, req Request) (Response, error)
	}

	// Config selects and configures a Summarizer.
	Config struct {
		Provider    string
		APIKey      string
		Model       string
		BaseURL     string
		Timeout     time.Duration
		Temperature float64
		MaxTokens   int
	}
)
