package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendwise/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestExpenseRows(t *testing.T) {
	rows := expenseRows([]core.Expense{{
		ID:          "abc",
		Description: "Lunch",
		Amount:      core.MoneyFromCents(1250),
		Category:    "Food",
		Date:        core.NewDate(2024, 6, 15),
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, expenseHeader, rows[0])
	assert.Equal(t, []any{"abc", "2024-06-15", "Lunch", "Food", "12.50"}, rows[1])
}

func TestCategoryRows(t *testing.T) {
	rows := categoryRows(core.DefaultCategories())
	require.Len(t, rows, 8)
	assert.Equal(t, []any{"Food", "hsl(10, 80%, 60%)"}, rows[1])
}

type sheetCall struct {
	method string
	path   string
	values [][]any
}

func newFakeSheets(t *testing.T) (*Client, *[]sheetCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []sheetCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := sheetCall{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPut {
			var vr struct {
				Values [][]any `json:"values"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
			call.values = vr.Values
			assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(server.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return NewWithService(svc, Config{SpreadsheetID: "sheet-1"}), &calls
}

func TestWriteCategoriesClearsThenWrites(t *testing.T) {
	client, calls := newFakeSheets(t)

	err := client.WriteCategories(context.Background(), []core.Category{{Name: "Pets", Color: "hsl(1, 2%, 3%)"}})
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.True(t, strings.HasSuffix((*calls)[0].path, ":clear"), (*calls)[0].path)
	assert.Contains(t, (*calls)[0].path, "sheet-1")

	assert.Equal(t, http.MethodPut, (*calls)[1].method)
	require.Len(t, (*calls)[1].values, 2)
	assert.Equal(t, "Pets", (*calls)[1].values[1][0])
}

func TestWriteExpensesEmptySnapshotKeepsHeader(t *testing.T) {
	client, calls := newFakeSheets(t)

	require.NoError(t, client.WriteExpenses(context.Background(), nil))
	require.Len(t, *calls, 2)
	require.Len(t, (*calls)[1].values, 1)
	assert.Equal(t, "ID", (*calls)[1].values[0][0])
}

func TestWriteWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x"}
	assert.Error(t, c.WriteExpenses(context.Background(), nil))
}
