package ledger

import (
	"cmp"
	"slices"

	"agenda/internal/core"
)

// Aggregate reduces txs into directional totals. Net is CompletedIn minus
// CompletedOut; pending amounts never enter it. The result does not depend on
// the order of txs.
func Aggregate(txs []core.Transaction) core.Balance {
	b := core.Balance{
		CompletedIn:  core.Zero,
		CompletedOut: core.Zero,
		PendingIn:    core.Zero,
		PendingOut:   core.Zero,
	}
	for _, tx := range txs {
		switch {
		case tx.Direction == core.Incoming && tx.Status == core.StatusCompleted:
			b.CompletedIn = b.CompletedIn.Add(tx.Amount)
		case tx.Direction == core.Outgoing && tx.Status == core.StatusCompleted:
			b.CompletedOut = b.CompletedOut.Add(tx.Amount)
		case tx.Direction == core.Incoming && tx.Status == core.StatusPending:
			b.PendingIn = b.PendingIn.Add(tx.Amount)
		case tx.Direction == core.Outgoing && tx.Status == core.StatusPending:
			b.PendingOut = b.PendingOut.Add(tx.Amount)
		}
	}
	b.Net = b.CompletedIn.Sub(b.CompletedOut)
	return b
}

// MonthlyBalances aggregates txs per calendar month, ascending. Months with no
// transactions are omitted.
func MonthlyBalances(txs []core.Transaction) []core.MonthBalance {
	type key struct{ year, month int }
	groups := make(map[key][]core.Transaction)
	var order []key
	for _, tx := range txs {
		k := key{tx.Date.Year(), tx.Date.Month()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], tx)
	}

	out := make([]core.MonthBalance, 0, len(order))
	for _, k := range order {
		out = append(out, core.MonthBalance{
			Year:    k.year,
			Month:   k.month,
			Balance: Aggregate(groups[k]),
			Count:   len(groups[k]),
		})
	}
	slices.SortFunc(out, func(a, b core.MonthBalance) int {
		if a.Year != b.Year {
			return cmp.Compare(a.Year, b.Year)
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}
