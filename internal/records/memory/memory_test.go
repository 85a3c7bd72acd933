package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"agenda/internal/core"
	"agenda/internal/log"
	"agenda/internal/records"
)

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})

	created, err := s.CreateBooking(ctx, core.Booking{
		Date:             core.NewDate(2024, 7, 1),
		CounterpartyName: "Joana & Miguel",
		ProviderName:     "Studio Luz",
		Receivable:       &core.Obligation{Amount: core.MustMoney("500"), Status: core.StatusPending},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	status := core.StatusCompleted
	updated, found, err := s.UpdateBooking(ctx, created.ID, records.BookingPatch{
		Receivable: &records.ObligationPatch{Status: &status},
	})
	if err != nil || !found {
		t.Fatalf("UpdateBooking: found=%v err=%v", found, err)
	}
	if updated.Receivable.Status != core.StatusCompleted {
		t.Errorf("status = %q, want completed", updated.Receivable.Status)
	}

	// Mutating a returned value must not leak into the store.
	updated.Receivable.Status = core.StatusPending
	got, found, _ := s.GetBooking(ctx, created.ID)
	if !found || got.Receivable.Status != core.StatusCompleted {
		t.Errorf("stored booking was mutated through returned pointer: %+v", got.Receivable)
	}

	deleted, err := s.DeleteBooking(ctx, created.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteBooking: deleted=%v err=%v", deleted, err)
	}
	if _, found, _ := s.GetBooking(ctx, created.ID); found {
		t.Error("booking still present after delete")
	}
	if deleted, _ := s.DeleteBooking(ctx, created.ID); deleted {
		t.Error("second delete reported success")
	}
}

func TestMissingIDsAreNotErrors(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})

	if _, found, err := s.GetEntry(ctx, "nope"); found || err != nil {
		t.Errorf("GetEntry: found=%v err=%v", found, err)
	}
	if _, found, err := s.UpdateEntry(ctx, "nope", records.EntryPatch{}); found || err != nil {
		t.Errorf("UpdateEntry: found=%v err=%v", found, err)
	}
	if _, found, err := s.UpdateBooking(ctx, "nope", records.BookingPatch{}); found || err != nil {
		t.Errorf("UpdateBooking: found=%v err=%v", found, err)
	}
}

func TestEntriesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})
	for _, desc := range []string{"rent", "insurance", "refund"} {
		if _, err := s.CreateEntry(ctx, core.LedgerEntry{
			Description: desc,
			Amount:      core.MustMoney("10"),
			Direction:   core.Outgoing,
			Status:      core.StatusPending,
			Date:        core.NewDate(2024, 1, 1),
		}); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := s.ListEntries(ctx)
	if len(entries) != 3 || entries[0].Description != "rent" || entries[2].Description != "refund" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromDir(dir, log.Discard())
	if err != nil {
		t.Fatalf("missing seed should not fail: %v", err)
	}
	if bs, _ := s.ListBookings(context.Background()); len(bs) != 0 {
		t.Fatalf("expected empty store, got %d bookings", len(bs))
	}

	seed := `{
	  "bookings": [{"id": "b1", "date": "2024-09-07", "counterpartyName": "Rita", "providerName": "Foto Norte",
	                "receivable": {"amount": "120.50", "status": "pending"}}],
	  "ledgerEntries": [{"description": "Rent", "amount": 900, "direction": "outgoing", "status": "completed", "date": "2024-09-01"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err = NewFromDir(dir, log.Discard())
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	bs, _ := s.ListBookings(context.Background())
	if len(bs) != 1 || bs[0].ID != "b1" || bs[0].Receivable.Amount.String() != "120.50" {
		t.Fatalf("unexpected bookings: %+v", bs)
	}
	es, _ := s.ListEntries(context.Background())
	if len(es) != 1 || es[0].ID == "" || es[0].Amount.String() != "900.00" {
		t.Fatalf("unexpected entries: %+v", es)
	}

	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromDir(dir, log.Discard()); err == nil {
		t.Error("expected error for malformed seed")
	}
}

func TestNewFromDirSkipsUndecodableRecords(t *testing.T) {
	dir := t.TempDir()
	seed := `{
	  "bookings": [
	    {"id": "b-bad", "date": "2024-09-07", "counterpartyName": "Rita", "providerName": "Foto Norte",
	     "receivable": {"amount": "abc", "status": "pending"}},
	    {"id": "b-ok", "date": "2024-09-08", "counterpartyName": "Ana", "providerName": "Studio Luz",
	     "receivable": {"amount": "300", "status": "pending"}}
	  ],
	  "ledgerEntries": [
	    {"id": "e-bad", "description": "Rent", "amount": 900, "direction": "outgoing", "status": "completed", "date": "someday"},
	    {"id": "e-ok", "description": "Deposit", "amount": 50, "direction": "incoming", "status": "completed", "date": "2024-09-01"}
	  ]
	}`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFromDir(dir, log.Discard())
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	bs, _ := s.ListBookings(context.Background())
	if len(bs) != 1 || bs[0].ID != "b-ok" {
		t.Errorf("bookings = %+v, want only b-ok", bs)
	}
	es, _ := s.ListEntries(context.Background())
	if len(es) != 1 || es[0].ID != "e-ok" {
		t.Errorf("entries = %+v, want only e-ok", es)
	}
}
