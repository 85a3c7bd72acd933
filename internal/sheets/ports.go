// Package sheets defines the spreadsheet export port and the tabular layout
// of an exported ledger.
package sheets

import (
	"context"

	"agenda/internal/core"
)

// LedgerWriter replaces the exported ledger with a fresh copy.
type LedgerWriter interface {
	WriteLedger(ctx context.Context, l Ledger) error
}

// Ledger is one export: the unified transactions and their balance.
type Ledger struct {
	Transactions []core.Transaction
	Balance      core.Balance
}

// Header is the first row of the exported sheet.
var Header = []string{"Date", "Description", "Direction", "Status", "Origin", "Amount", "Source"}

// Rows lays the ledger out as sheet rows: the header, one row per
// transaction, a blank separator and the balance totals. Amounts are exact
// decimal strings.
func (l Ledger) Rows() [][]string {
	rows := make([][]string, 0, len(l.Transactions)+8)
	rows = append(rows, Header)
	for _, tx := range l.Transactions {
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Description,
			string(tx.Direction),
			string(tx.Status),
			string(tx.Origin),
			tx.Amount.String(),
			tx.SourceID,
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"Completed in", l.Balance.CompletedIn.String()},
		[]string{"Completed out", l.Balance.CompletedOut.String()},
		[]string{"Pending in", l.Balance.PendingIn.String()},
		[]string{"Pending out", l.Balance.PendingOut.String()},
		[]string{"Net balance", l.Balance.Net.String()},
	)
	return rows
}
