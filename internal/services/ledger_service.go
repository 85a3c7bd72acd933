package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"agenda/internal/core"
	"agenda/internal/ledger"
	"agenda/internal/log"
	"agenda/internal/query"
)

// SnapshotSource lists every record feeding the ledger.
type SnapshotSource interface {
	ListBookings(ctx context.Context) ([]core.Booking, error)
	ListEntries(ctx context.Context) ([]core.LedgerEntry, error)
}

// SkipRecorder counts records left out of a projection.
type SkipRecorder interface {
	ObserveSkipped(origin string, n int)
}

// Snapshot is a point-in-time read of the record store.
type Snapshot struct {
	Bookings []core.Booking
	Entries  []core.LedgerEntry
}

// LedgerService derives the unified transaction view and balances from a
// fresh store snapshot on every call. Nothing is cached.
type LedgerService struct {
	source   SnapshotSource
	logger   *log.Logger
	recorder SkipRecorder
	today    func() core.Date
}

// NewLedgerService creates the service. recorder may be nil.
func NewLedgerService(source SnapshotSource, logger *log.Logger, recorder SkipRecorder) *LedgerService {
	return &LedgerService{
		source:   source,
		logger:   logger.WithComponent(log.ComponentLedger),
		recorder: recorder,
		today:    core.Today,
	}
}

// Snapshot loads bookings and entries concurrently.
func (s *LedgerService) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Bookings, err = s.source.ListBookings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Entries, err = s.source.ListEntries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: load snapshot: %w", ErrStoreUnavailable, err)
	}
	return snap, nil
}

// Project unifies the current snapshot, logging any skipped records.
func (s *LedgerService) Project(ctx context.Context) (ledger.Projection, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ledger.Projection{}, err
	}
	p := ledger.Project(snap.Bookings, snap.Entries)

	counts := map[core.Origin]int{}
	for _, sk := range p.Skipped {
		counts[sk.Origin]++
		s.logger.WarnContext(ctx, "Skipping malformed record",
			log.FieldSourceID, sk.SourceID, log.FieldOrigin, string(sk.Origin), log.FieldReason, sk.Reason)
	}
	if s.recorder != nil {
		for origin, n := range counts {
			s.recorder.ObserveSkipped(string(origin), n)
		}
	}
	return p, nil
}

// Transactions returns the unified transactions matching spec, in ledger order.
func (s *LedgerService) Transactions(ctx context.Context, spec query.TransactionSpec) ([]core.Transaction, error) {
	p, err := s.Project(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTransactions(p.Transactions, spec, s.today()), nil
}

// Balance aggregates every transaction currently in the ledger.
func (s *LedgerService) Balance(ctx context.Context) (core.Balance, error) {
	p, err := s.Project(ctx)
	if err != nil {
		return core.Balance{}, err
	}
	return ledger.Aggregate(p.Transactions), nil
}

// Monthly returns one balance per calendar month with activity.
func (s *LedgerService) Monthly(ctx context.Context) ([]core.MonthBalance, error) {
	p, err := s.Project(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.MonthlyBalances(p.Transactions), nil
}
