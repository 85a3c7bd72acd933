// Package ledger projects bookings and ledger entries into one canonical
// Transaction sequence and reduces that sequence into balances.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared state, safe to call concurrently on independent snapshots.
package ledger

import (
	"fmt"
	"slices"

	"agenda/internal/core"
)

// Skipped describes a source record left out of a projection because it was
// malformed. One bad record must not blank the whole ledger.
type Skipped struct {
	SourceID string
	Origin   core.Origin
	Reason   string
}

// Projection is the result of projecting a snapshot of the record store.
type Projection struct {
	Transactions []core.Transaction
	Skipped      []Skipped
}

// Unify returns the chronologically ordered Transactions derived from the
// given bookings and ledger entries. Malformed items are dropped.
func Unify(bookings []core.Booking, entries []core.LedgerEntry) []core.Transaction {
	return Project(bookings, entries).Transactions
}

// Project is Unify plus the list of records it had to skip.
//
// Ordering is ascending by calendar day. Ties keep source order: bookings in
// input order (receivable before payable), then entries in input order.
func Project(bookings []core.Booking, entries []core.LedgerEntry) Projection {
	p := Projection{Transactions: make([]core.Transaction, 0, len(bookings)*2+len(entries))}

	for _, b := range bookings {
		for _, kind := range []core.ObligationKind{core.Receivable, core.Payable} {
			o := b.Obligation(kind)
			if o == nil {
				continue
			}
			tx := fromObligation(b, kind, *o)
			if reason := malformed(tx); reason != "" {
				p.Skipped = append(p.Skipped, Skipped{SourceID: tx.ID, Origin: core.OriginBooking, Reason: reason})
				continue
			}
			p.Transactions = append(p.Transactions, tx)
		}
	}

	for _, e := range entries {
		tx := fromEntry(e)
		if reason := malformed(tx); reason != "" {
			p.Skipped = append(p.Skipped, Skipped{SourceID: e.ID, Origin: core.OriginManual, Reason: reason})
			continue
		}
		p.Transactions = append(p.Transactions, tx)
	}

	slices.SortStableFunc(p.Transactions, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return p
}

func fromObligation(b core.Booking, kind core.ObligationKind, o core.Obligation) core.Transaction {
	return core.Transaction{
		ID:          kind.TransactionID(b.ID),
		Description: obligationDescription(b, kind),
		Amount:      o.Amount,
		Direction:   kind.Direction(),
		Status:      o.Status,
		Date:        b.Date,
		Origin:      core.OriginBooking,
		SourceID:    b.ID,
	}
}

func obligationDescription(b core.Booking, kind core.ObligationKind) string {
	if kind == core.Payable {
		return fmt.Sprintf("Payment to %s (%s)", b.ProviderName, b.CounterpartyName)
	}
	return fmt.Sprintf("Payment from %s (%s)", b.CounterpartyName, b.ProviderName)
}

func fromEntry(e core.LedgerEntry) core.Transaction {
	return core.Transaction{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Direction:   e.Direction,
		Status:      e.Status,
		Date:        e.Date,
		Origin:      core.OriginManual,
		SourceID:    e.ID,
	}
}

// malformed returns a non-empty reason when tx cannot take part in a ledger.
func malformed(tx core.Transaction) string {
	switch {
	case !tx.Amount.IsPositive():
		return "non-positive amount"
	case !tx.Status.Valid():
		return fmt.Sprintf("unknown status %q", tx.Status)
	case !tx.Direction.Valid():
		return fmt.Sprintf("unknown direction %q", tx.Direction)
	case tx.Date.IsZero():
		return "missing date"
	}
	return ""
}
