// Package records defines the persistence ports for bookings and ledger
// entries, plus the partial-update patches both store implementations share.
package records

import (
	"context"

	"github.com/google/uuid"

	"agenda/internal/core"
)

// BookingStore persists bookings. Get, Update and Delete report a missing id
// through their boolean result, never through an error.
type BookingStore interface {
	ListBookings(ctx context.Context) ([]core.Booking, error)
	GetBooking(ctx context.Context, id string) (core.Booking, bool, error)
	CreateBooking(ctx context.Context, b core.Booking) (core.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch BookingPatch) (core.Booking, bool, error)
	DeleteBooking(ctx context.Context, id string) (bool, error)
}

// LedgerStore persists manual ledger entries.
type LedgerStore interface {
	ListEntries(ctx context.Context) ([]core.LedgerEntry, error)
	GetEntry(ctx context.Context, id string) (core.LedgerEntry, bool, error)
	CreateEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error)
	UpdateEntry(ctx context.Context, id string, patch EntryPatch) (core.LedgerEntry, bool, error)
	DeleteEntry(ctx context.Context, id string) (bool, error)
}

// Store is the full record store.
type Store interface {
	BookingStore
	LedgerStore
	Ping(ctx context.Context) error
	Close() error
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// ObligationPatch edits one obligation slot. Clear removes the obligation;
// otherwise set fields overwrite the current ones, creating the obligation
// as pending when the slot was empty.
type ObligationPatch struct {
	Clear  bool         `json:"clear,omitempty"`
	Amount *core.Money  `json:"amount,omitempty"`
	Status *core.Status `json:"status,omitempty"`
}

func (p *ObligationPatch) apply(cur *core.Obligation) *core.Obligation {
	if p == nil {
		return cur
	}
	if p.Clear {
		return nil
	}
	next := core.Obligation{Status: core.StatusPending}
	if cur != nil {
		next = *cur
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	return &next
}

// BookingPatch is a partial booking update. Nil fields are left unchanged.
type BookingPatch struct {
	Date             *core.Date       `json:"date,omitempty"`
	ScheduledTime    *string          `json:"scheduledTime,omitempty"`
	CheckIn          *string          `json:"checkIn,omitempty"`
	CheckOut         *string          `json:"checkOut,omitempty"`
	CounterpartyName *string          `json:"counterpartyName,omitempty"`
	ProviderName     *string          `json:"providerName,omitempty"`
	Receivable       *ObligationPatch `json:"receivable,omitempty"`
	Payable          *ObligationPatch `json:"payable,omitempty"`
}

// Apply returns b with the patch applied. b is not modified.
func (p BookingPatch) Apply(b core.Booking) core.Booking {
	if p.Date != nil {
		b.Date = *p.Date
	}
	setString(&b.ScheduledTime, p.ScheduledTime)
	setString(&b.CheckIn, p.CheckIn)
	setString(&b.CheckOut, p.CheckOut)
	setString(&b.CounterpartyName, p.CounterpartyName)
	setString(&b.ProviderName, p.ProviderName)
	b.Receivable = p.Receivable.apply(b.Receivable)
	b.Payable = p.Payable.apply(b.Payable)
	return b
}

// EntryPatch is a partial ledger entry update. Nil fields are left unchanged.
type EntryPatch struct {
	Description *string         `json:"description,omitempty"`
	Amount      *core.Money     `json:"amount,omitempty"`
	Direction   *core.Direction `json:"direction,omitempty"`
	Status      *core.Status    `json:"status,omitempty"`
	Date        *core.Date      `json:"date,omitempty"`
}

func (p EntryPatch) Apply(e core.LedgerEntry) core.LedgerEntry {
	setString(&e.Description, p.Description)
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Direction != nil {
		e.Direction = *p.Direction
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
