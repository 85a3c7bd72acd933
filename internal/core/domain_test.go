package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateCompareIgnoresTimeOfDay(t *testing.T) {
	morning := Date{Time: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	evening := Date{Time: time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)}
	if !morning.SameDay(evening) {
		t.Fatalf("expected same day")
	}
	if NewDate(2024, 5, 31).Compare(morning) != -1 {
		t.Fatalf("expected earlier day to compare -1")
	}
	if NewDate(2024, 6, 2).Compare(evening) != 1 {
		t.Fatalf("expected later day to compare +1")
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-06-01T22:30:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.String() != "2024-06-01" {
		t.Fatalf("expected 2024-06-01, got %s", d)
	}
	out, err := json.Marshal(d)
	if err != nil || string(out) != `"2024-06-01"` {
		t.Fatalf("unexpected marshal: %s err=%v", out, err)
	}
	if err := json.Unmarshal([]byte(`"01/06/2024"`), &d); err == nil {
		t.Fatalf("expected error for ambiguous date")
	}
}

func TestBookingValidate(t *testing.T) {
	good := Booking{
		Date:             NewDate(2024, 6, 1),
		ScheduledTime:    "15:30",
		CounterpartyName: "Joana & Miguel",
		ProviderName:     "Studio Luz",
		Receivable:       &Obligation{Amount: MustMoney("500"), Status: StatusPending},
		Payable:          &Obligation{Amount: MustMoney("50"), Status: StatusCompleted},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noObligations := good
	noObligations.Receivable, noObligations.Payable = nil, nil
	if err := noObligations.Validate(); err != nil {
		t.Fatalf("bookings without obligations are valid, got %v", err)
	}

	bads := map[string]Booking{
		"zero date":        {CounterpartyName: "a", ProviderName: "b"},
		"missing client":   {Date: NewDate(2024, 6, 1), ProviderName: "b"},
		"bad time":         {Date: NewDate(2024, 6, 1), CounterpartyName: "a", ProviderName: "b", CheckIn: "25:00"},
		"zero receivable":  {Date: NewDate(2024, 6, 1), CounterpartyName: "a", ProviderName: "b", Receivable: &Obligation{Status: StatusPending}},
		"unknown status":   {Date: NewDate(2024, 6, 1), CounterpartyName: "a", ProviderName: "b", Payable: &Obligation{Amount: MustMoney("1"), Status: "paid"}},
	}
	for name, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	err := bads["missing client"].Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "Booking.CounterpartyName" || !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected validation error on CounterpartyName, got %v", err)
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	good := LedgerEntry{
		Description: "Rent",
		Amount:      MustMoney("100"),
		Direction:   Outgoing,
		Status:      StatusCompleted,
		Date:        NewDate(2024, 5, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*LedgerEntry)
		want   error
	}{
		{func(e *LedgerEntry) { e.Description = "  " }, ErrEmptyDescription},
		{func(e *LedgerEntry) { e.Amount = Money{} }, ErrInvalidAmount},
		{func(e *LedgerEntry) { e.Direction = "sideways" }, ErrInvalidDirection},
		{func(e *LedgerEntry) { e.Status = "" }, ErrInvalidStatus},
		{func(e *LedgerEntry) { e.Date = Date{} }, ErrInvalidDate},
	}
	for i, tc := range cases {
		e := good
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestObligationKind(t *testing.T) {
	if Receivable.Direction() != Incoming || Payable.Direction() != Outgoing {
		t.Fatalf("unexpected direction mapping")
	}
	if got := Payable.TransactionID("b1"); got != "b1:payable" {
		t.Fatalf("unexpected transaction id %q", got)
	}
	if StatusCompleted.Label(Payable) != "paid" || StatusCompleted.Label(Receivable) != "received" {
		t.Fatalf("unexpected labels")
	}
}
