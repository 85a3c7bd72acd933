package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"

	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"

	OriginBooking Origin = "booking"
	OriginManual  Origin = "manual"

	Receivable ObligationKind = "receivable"
	Payable    ObligationKind = "payable"
)

const dateLayout = "2006-01-02"

type (
	// Status is the settlement state shared by obligations, entries and transactions.
	Status string

	// Direction tells whether money flows in or out.
	Direction string

	// Origin records where a Transaction was projected from.
	Origin string

	// ObligationKind names one of the two obligation slots of a Booking.
	ObligationKind string

	// Date is a calendar day. Time-of-day is ignored by every comparison.
	Date struct {
		time.Time
	}

	// Obligation is an amount owed in one direction, embedded in a Booking.
	Obligation struct {
		Amount Money  `json:"amount"`
		Status Status `json:"status" validate:"oneof=pending completed"`
	}

	// Booking is a scheduled engagement between a provider and a client.
	// Receivable (client owes) and Payable (owed to provider) are independent.
	Booking struct {
		ID               string      `json:"id"`
		Date             Date        `json:"date"`
		ScheduledTime    string      `json:"scheduledTime,omitempty" validate:"omitempty,datetime=15:04"`
		CheckIn          string      `json:"checkIn,omitempty" validate:"omitempty,datetime=15:04"`
		CheckOut         string      `json:"checkOut,omitempty" validate:"omitempty,datetime=15:04"`
		CounterpartyName string      `json:"counterpartyName" validate:"required,max=200"`
		ProviderName     string      `json:"providerName" validate:"required,max=200"`
		Receivable       *Obligation `json:"receivable,omitempty"`
		Payable          *Obligation `json:"payable,omitempty"`
	}

	// LedgerEntry is a standalone money obligation not tied to any booking.
	LedgerEntry struct {
		ID          string    `json:"id"`
		Description string    `json:"description" validate:"required,max=200"`
		Amount      Money     `json:"amount"`
		Direction   Direction `json:"direction" validate:"oneof=incoming outgoing"`
		Status      Status    `json:"status" validate:"oneof=pending completed"`
		Date        Date      `json:"date"`
	}

	// Transaction is the canonical unit of money movement. It is derived from
	// bookings and ledger entries on demand and never persisted.
	Transaction struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Direction   Direction `json:"direction"`
		Status      Status    `json:"status"`
		Date        Date      `json:"date"`
		Origin      Origin    `json:"origin"`
		SourceID    string    `json:"sourceId"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidRecord    = errors.New("invalid record")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports the first struct field that failed a validation rule.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %s failed rule %q", ErrInvalidRecord, e.Field, e.Rule)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

func structError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Field: verrs[0].Namespace(), Rule: verrs[0].Tag()}
	}
	return err
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar day in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Compare orders two dates by calendar day only: -1, 0 or +1.
func (d Date) Compare(o Date) int {
	a := [3]int{d.Year(), d.Month(), d.Day()}
	b := [3]int{o.Year(), o.Month(), o.Day()}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Compare(o) == 0
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Full timestamps are accepted; only the calendar day is kept.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

func (d Direction) Valid() bool {
	return d == Incoming || d == Outgoing
}

// Label returns the wording used for a settled obligation of the given kind.
func (s Status) Label(kind ObligationKind) string {
	if s != StatusCompleted {
		return string(s)
	}
	if kind == Payable {
		return "paid"
	}
	return "received"
}

// Direction maps an obligation slot onto the ledger direction it produces.
func (k ObligationKind) Direction() Direction {
	if k == Payable {
		return Outgoing
	}
	return Incoming
}

// TransactionID returns the stable id of the Transaction projected from the
// given obligation slot of a booking.
func (k ObligationKind) TransactionID(bookingID string) string {
	return bookingID + ":" + string(k)
}

func (o Obligation) Validate() error {
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	return nil
}

// Obligation returns the obligation stored in the given slot, or nil.
func (b Booking) Obligation(kind ObligationKind) *Obligation {
	if kind == Payable {
		return b.Payable
	}
	return b.Receivable
}

func (b Booking) Validate() error {
	if err := b.Date.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(b); err != nil {
		return structError(err)
	}
	for _, kind := range []ObligationKind{Receivable, Payable} {
		if o := b.Obligation(kind); o != nil {
			if err := o.Validate(); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
		}
	}
	return nil
}

func (e LedgerEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, e.Direction)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if err := validate.Struct(e); err != nil {
		return structError(err)
	}
	return nil
}
