package services

import (
	"context"
	"fmt"

	"agenda/internal/amqp"
	"agenda/internal/core"
	"agenda/internal/log"
	"agenda/internal/records"
)

// Publisher announces record changes. *amqp.Client implements it.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// RecordService validates and stores bookings and ledger entries, then
// announces the change. A failed announcement never fails the write.
type RecordService struct {
	bookings    records.BookingStore
	entries     records.LedgerStore
	publisher   Publisher
	allowRevert bool
	logger      *log.Logger
}

// NewRecordService creates the service. publisher may be nil.
func NewRecordService(bookings records.BookingStore, entries records.LedgerStore, publisher Publisher, allowRevert bool, logger *log.Logger) *RecordService {
	return &RecordService{
		bookings:    bookings,
		entries:     entries,
		publisher:   publisher,
		allowRevert: allowRevert,
		logger:      logger.WithComponent(log.ComponentRecords),
	}
}

func (s *RecordService) ListBookings(ctx context.Context) ([]core.Booking, error) {
	bs, err := s.bookings.ListBookings(ctx)
	if err != nil {
		return nil, storeError("list bookings", err)
	}
	return bs, nil
}

func (s *RecordService) GetBooking(ctx context.Context, id string) (core.Booking, error) {
	b, found, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return core.Booking{}, storeError("get booking", err)
	}
	if !found {
		return core.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (s *RecordService) CreateBooking(ctx context.Context, b core.Booking) (core.Booking, error) {
	if err := b.Validate(); err != nil {
		return core.Booking{}, err
	}
	created, err := s.bookings.CreateBooking(ctx, b)
	if err != nil {
		return core.Booking{}, storeError("create booking", err)
	}
	s.logger.InfoContext(ctx, "Booking created",
		log.NewFields().WithBooking(created.ID, created.ProviderName, created.CounterpartyName).WithOperation(log.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.KindBooking, created.ID, log.OpCreate)
	return created, nil
}

// UpdateBooking applies patch after checking that the result is valid and
// that no completed obligation goes back to pending.
func (s *RecordService) UpdateBooking(ctx context.Context, id string, patch records.BookingPatch) (core.Booking, error) {
	cur, err := s.GetBooking(ctx, id)
	if err != nil {
		return core.Booking{}, err
	}
	next := patch.Apply(cur)
	if err := next.Validate(); err != nil {
		return core.Booking{}, err
	}
	if !s.allowRevert {
		for _, kind := range []core.ObligationKind{core.Receivable, core.Payable} {
			if reverted(cur.Obligation(kind), next.Obligation(kind)) {
				return core.Booking{}, fmt.Errorf("booking %s %s: %w", id, kind, ErrStatusRevert)
			}
		}
	}

	updated, found, err := s.bookings.UpdateBooking(ctx, id, patch)
	if err != nil {
		return core.Booking{}, storeError("update booking", err)
	}
	if !found {
		return core.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Booking updated", log.FieldBookingID, id)
	s.publish(ctx, amqp.KindBooking, id, log.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteBooking(ctx context.Context, id string) error {
	deleted, err := s.bookings.DeleteBooking(ctx, id)
	if err != nil {
		return storeError("delete booking", err)
	}
	if !deleted {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Booking deleted", log.FieldBookingID, id)
	s.publish(ctx, amqp.KindBooking, id, log.OpDelete)
	return nil
}

func (s *RecordService) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	es, err := s.entries.ListEntries(ctx)
	if err != nil {
		return nil, storeError("list ledger entries", err)
	}
	return es, nil
}

func (s *RecordService) GetEntry(ctx context.Context, id string) (core.LedgerEntry, error) {
	e, found, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return core.LedgerEntry{}, storeError("get ledger entry", err)
	}
	if !found {
		return core.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *RecordService) CreateEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}
	created, err := s.entries.CreateEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, storeError("create ledger entry", err)
	}
	s.logger.InfoContext(ctx, "Ledger entry created",
		log.NewFields().
			WithEntry(created.ID, created.Amount.String(), string(created.Direction), string(created.Status)).
			WithOperation(log.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.KindLedgerEntry, created.ID, log.OpCreate)
	return created, nil
}

func (s *RecordService) UpdateEntry(ctx context.Context, id string, patch records.EntryPatch) (core.LedgerEntry, error) {
	cur, err := s.GetEntry(ctx, id)
	if err != nil {
		return core.LedgerEntry{}, err
	}
	next := patch.Apply(cur)
	if err := next.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}
	if !s.allowRevert && cur.Status == core.StatusCompleted && next.Status == core.StatusPending {
		return core.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", id, ErrStatusRevert)
	}

	updated, found, err := s.entries.UpdateEntry(ctx, id, patch)
	if err != nil {
		return core.LedgerEntry{}, storeError("update ledger entry", err)
	}
	if !found {
		return core.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Ledger entry updated", log.FieldEntryID, id)
	s.publish(ctx, amqp.KindLedgerEntry, id, log.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteEntry(ctx context.Context, id string) error {
	deleted, err := s.entries.DeleteEntry(ctx, id)
	if err != nil {
		return storeError("delete ledger entry", err)
	}
	if !deleted {
		return fmt.Errorf("ledger entry %s: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Ledger entry deleted", log.FieldEntryID, id)
	s.publish(ctx, amqp.KindLedgerEntry, id, log.OpDelete)
	return nil
}

func (s *RecordService) publish(ctx context.Context, kind, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, amqp.NewLedgerChangedMessage(kind, id, op)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldOperation, log.OpPublish, "kind", kind, "id", id, "change", op, log.FieldError, err)
	}
}

// reverted reports a completed obligation that is still present but pending.
func reverted(before, after *core.Obligation) bool {
	return before != nil && after != nil &&
		before.Status == core.StatusCompleted && after.Status == core.StatusPending
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
