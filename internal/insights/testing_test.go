package insights

import (
	"fmt"

	"spendwise/internal/core"
)

func sampleTransactions(n int) []core.Transaction {
	out := make([]core.Transaction, n)
	for i := range out {
		out[i] = core.Transaction{
			Description: fmt.Sprintf("item %d", i+1),
			Amount:      core.MoneyFromCents(int64((i + 1) * 1000)),
		}
	}
	return out
}
