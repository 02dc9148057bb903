package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// staticSummarizer produces a deterministic summary without any remote call.
// It backs local runs that have no API key.
type staticSummarizer struct{}

func (staticSummarizer) Summarize(_ context.Context, req Request) (Response, error) {
	if len(req.Transactions) == 0 {
		return Response{Summary: "No transactions recorded yet."}, nil
	}

	total := decimal.Zero
	largest := req.Transactions[0]
	for _, tx := range req.Transactions {
		total = total.Add(tx.Amount.Decimal)
		if tx.Amount.GreaterThan(largest.Amount.Decimal) {
			largest = tx
		}
	}
	avg := total.Div(decimal.NewFromInt(int64(len(req.Transactions))))

	var b strings.Builder
	fmt.Fprintf(&b, "You recorded %d transactions totalling %s, an average of %s each. ",
		len(req.Transactions), total.StringFixed(2), avg.StringFixed(2))
	fmt.Fprintf(&b, "The largest was %q at %s. ", largest.Description, largest.Amount.StringFixed(2))
	b.WriteString("Review recurring and large purchases first when looking for savings.")
	return Response{Summary: b.String()}, nil
}
