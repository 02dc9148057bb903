// Package google mirrors ledger snapshots into a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"spendwise/internal/core"
	ports "spendwise/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the tabs to write.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	ExpensesSheet   string
	CategoriesSheet string
}

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	expensesSheet   string
	categoriesSheet string
}

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing service, letting tests point it at a fake endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	expenses := strings.TrimSpace(cfg.ExpensesSheet)
	if expenses == "" {
		expenses = "Expenses"
	}
	categories := strings.TrimSpace(cfg.CategoriesSheet)
	if categories == "" {
		categories = "Categories"
	}
	return &Client{
		svc:             svc,
		spreadsheetID:   strings.TrimSpace(cfg.SpreadsheetID),
		expensesSheet:   expenses,
		categoriesSheet: categories,
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// WriteExpenses replaces the expenses tab with the given snapshot.
func (c *Client) WriteExpenses(ctx context.Context, expenses []core.Expense) error {
	return c.rewrite(ctx, c.expensesSheet, "A:E", expenseRows(expenses))
}

// WriteCategories replaces the categories tab with the given snapshot.
func (c *Client) WriteCategories(ctx context.Context, categories []core.Category) error {
	return c.rewrite(ctx, c.categoriesSheet, "A:B", categoryRows(categories))
}

func (c *Client) rewrite(ctx context.Context, sheet, columns string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!%s", sheet, columns)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Sheet rewritten", "sheet", sheet, "rows", len(rows)-1)
	return nil
}
