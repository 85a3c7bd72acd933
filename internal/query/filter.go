// Package query filters bookings and transactions with deterministic,
// conjunctive predicates.
//
// Filters never reorder their input and never fail: an empty result is a
// valid outcome.
package query

import (
	"fmt"
	"strings"

	"agenda/internal/core"
)

const (
	TemporalAll      Temporal = "all"
	TemporalUpcoming Temporal = "upcoming"
	TemporalPast     Temporal = "past"
)

// Temporal selects bookings relative to today, at day granularity.
type Temporal string

// ParseTemporal accepts "", "all", "upcoming" and "past".
func ParseTemporal(s string) (Temporal, error) {
	switch t := Temporal(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TemporalAll:
		return TemporalAll, nil
	case TemporalUpcoming, TemporalPast:
		return t, nil
	default:
		return "", fmt.Errorf("invalid temporal filter %q", s)
	}
}

// matches treats today as upcoming.
func (t Temporal) matches(d, today core.Date) bool {
	switch t {
	case TemporalUpcoming:
		return d.Compare(today) >= 0
	case TemporalPast:
		return d.Compare(today) < 0
	default:
		return true
	}
}

// Spec is a booking filter. Zero-valued fields impose no constraint.
type Spec struct {
	Temporal     Temporal
	OnDate       *core.Date
	Provider     string
	Counterparty string
	Relevance    RelevanceSet
}

// Filter returns the bookings satisfying every predicate in spec, in input
// order. today is the reference day for the temporal predicate.
func Filter(bookings []core.Booking, spec Spec, today core.Date) []core.Booking {
	out := make([]core.Booking, 0, len(bookings))
	for _, b := range bookings {
		if spec.Match(b, today) {
			out = append(out, b)
		}
	}
	return out
}

// Match reports whether a single booking satisfies spec.
func (s Spec) Match(b core.Booking, today core.Date) bool {
	if !s.Temporal.matches(b.Date, today) {
		return false
	}
	if s.OnDate != nil && !b.Date.SameDay(*s.OnDate) {
		return false
	}
	if constrained(s.Provider) && b.ProviderName != s.Provider {
		return false
	}
	if constrained(s.Counterparty) && b.CounterpartyName != s.Counterparty {
		return false
	}
	if s.Relevance != nil && !s.Relevance.Matches(b.ProviderName, b.CounterpartyName) {
		return false
	}
	return true
}

func constrained(name string) bool {
	return name != "" && name != "all"
}

// TransactionSpec filters the unified transaction sequence.
type TransactionSpec struct {
	Temporal  Temporal
	OnDate    *core.Date
	Direction core.Direction
	Status    core.Status
	Origin    core.Origin
}

// FilterTransactions is Filter for transactions.
func FilterTransactions(txs []core.Transaction, spec TransactionSpec, today core.Date) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if spec.Match(tx, today) {
			out = append(out, tx)
		}
	}
	return out
}

func (s TransactionSpec) Match(tx core.Transaction, today core.Date) bool {
	switch {
	case !s.Temporal.matches(tx.Date, today):
		return false
	case s.OnDate != nil && !tx.Date.SameDay(*s.OnDate):
		return false
	case s.Direction != "" && tx.Direction != s.Direction:
		return false
	case s.Status != "" && tx.Status != s.Status:
		return false
	case s.Origin != "" && tx.Origin != s.Origin:
		return false
	}
	return true
}
