// Package memory is an in-process record store, optionally seeded from a
// JSON file. Data does not survive a restart.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"agenda/internal/core"
	"agenda/internal/log"
	"agenda/internal/records"
)

// SeedFile is the file NewFromDir looks for.
const SeedFile = "seed.json"

// Seed is the on-disk seed format.
type Seed struct {
	Bookings      []core.Booking     `json:"bookings"`
	LedgerEntries []core.LedgerEntry `json:"ledgerEntries"`
}

type Store struct {
	mu       sync.RWMutex
	bookings []core.Booking
	entries  []core.LedgerEntry
}

var _ records.Store = (*Store)(nil)

// New returns a store holding copies of the given records. Records without an
// id get a fresh one.
func New(seed Seed) *Store {
	s := &Store{}
	for _, b := range seed.Bookings {
		if b.ID == "" {
			b.ID = records.NewID()
		}
		s.bookings = append(s.bookings, cloneBooking(b))
	}
	for _, e := range seed.LedgerEntries {
		if e.ID == "" {
			e.ID = records.NewID()
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// NewFromDir seeds the store from dir/seed.json. A missing file yields an
// empty store and a file that is not a seed document is an error. Records
// that fail to decode are logged and left out.
func NewFromDir(dir string, logger *log.Logger) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, SeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return New(Seed{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var doc struct {
		Bookings      []json.RawMessage `json:"bookings"`
		LedgerEntries []json.RawMessage `json:"ledgerEntries"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", SeedFile, err)
	}

	var seed Seed
	seed.Bookings = decodeEach[core.Booking](doc.Bookings, core.OriginBooking, logger)
	seed.LedgerEntries = decodeEach[core.LedgerEntry](doc.LedgerEntries, core.OriginManual, logger)
	return New(seed), nil
}

func decodeEach[T any](items []json.RawMessage, origin core.Origin, logger *log.Logger) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			logger.Warn("Skipping undecodable seed record",
				log.FieldOrigin, string(origin), "index", i, log.FieldError, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListBookings(context.Context) ([]core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Booking, len(s.bookings))
	for i, b := range s.bookings {
		out[i] = cloneBooking(b)
	}
	return out, nil
}

func (s *Store) GetBooking(_ context.Context, id string) (core.Booking, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.bookingIndex(id)
	if i < 0 {
		return core.Booking{}, false, nil
	}
	return cloneBooking(s.bookings[i]), true, nil
}

func (s *Store) CreateBooking(_ context.Context, b core.Booking) (core.Booking, error) {
	b.ID = records.NewID()
	b = cloneBooking(b)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, b)
	return cloneBooking(b), nil
}

func (s *Store) UpdateBooking(_ context.Context, id string, patch records.BookingPatch) (core.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.bookingIndex(id)
	if i < 0 {
		return core.Booking{}, false, nil
	}
	s.bookings[i] = cloneBooking(patch.Apply(s.bookings[i]))
	return cloneBooking(s.bookings[i]), true, nil
}

func (s *Store) DeleteBooking(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.bookingIndex(id)
	if i < 0 {
		return false, nil
	}
	s.bookings = slices.Delete(s.bookings, i, i+1)
	return true, nil
}

func (s *Store) ListEntries(context.Context) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries), nil
}

func (s *Store) GetEntry(_ context.Context, id string) (core.LedgerEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.entryIndex(id)
	if i < 0 {
		return core.LedgerEntry{}, false, nil
	}
	return s.entries[i], true, nil
}

func (s *Store) CreateEntry(_ context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	e.ID = records.NewID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, patch records.EntryPatch) (core.LedgerEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(id)
	if i < 0 {
		return core.LedgerEntry{}, false, nil
	}
	s.entries[i] = patch.Apply(s.entries[i])
	return s.entries[i], true, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(id)
	if i < 0 {
		return false, nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true, nil
}

func (s *Store) bookingIndex(id string) int {
	return slices.IndexFunc(s.bookings, func(b core.Booking) bool { return b.ID == id })
}

func (s *Store) entryIndex(id string) int {
	return slices.IndexFunc(s.entries, func(e core.LedgerEntry) bool { return e.ID == id })
}

// cloneBooking detaches the obligation pointers from the stored copy.
func cloneBooking(b core.Booking) core.Booking {
	if b.Receivable != nil {
		r := *b.Receivable
		b.Receivable = &r
	}
	if b.Payable != nil {
		p := *b.Payable
		b.Payable = &p
	}
	return b
}
