package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"agenda/internal/core"
	"agenda/internal/intent"
	"agenda/internal/log"
	"agenda/internal/query"
)

// BookingLister lists every booking.
type BookingLister interface {
	ListBookings(ctx context.Context) ([]core.Booking, error)
}

// IntentGuard turns a free-text query into an intent.Outcome without failing.
type IntentGuard interface {
	Resolve(ctx context.Context, q string) intent.Outcome
}

type SearchRequest struct {
	Spec  query.Spec
	Query string
}

// SearchResult is a filtered booking list plus what the resolver made of the
// query. Notice is set whenever smart search fell back.
type SearchResult struct {
	Bookings []core.Booking `json:"bookings"`
	Query    string         `json:"query,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Notice   string         `json:"notice,omitempty"`
	Fallback bool           `json:"fallback"`
}

type SearchService struct {
	bookings BookingLister
	guard    IntentGuard
	logger   *log.Logger
	today    func() core.Date
}

func NewSearchService(bookings BookingLister, guard IntentGuard, logger *log.Logger) *SearchService {
	return &SearchService{
		bookings: bookings,
		guard:    guard,
		logger:   logger.WithComponent(log.ComponentSearch),
		today:    core.Today,
	}
}

// Search loads bookings and resolves the query concurrently, then filters.
// A resolver failure yields the same bookings as a search without query.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	var (
		bookings []core.Booking
		outcome  intent.Outcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.bookings.ListBookings(gctx)
		return err
	})
	if req.Query != "" && s.guard != nil {
		g.Go(func() error {
			outcome = s.guard.Resolve(gctx, req.Query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, fmt.Errorf("%w: list bookings: %w", ErrStoreUnavailable, err)
	}

	spec := req.Spec
	if outcome.Relevance != nil {
		spec.Relevance = outcome.Relevance
	}
	matched := query.Filter(bookings, spec, s.today())

	s.logger.DebugContext(ctx, "Booking search",
		log.FieldIntentQuery, req.Query, log.FieldCount, len(matched), log.FieldFallback, outcome.Fallback)

	return SearchResult{
		Bookings: matched,
		Query:    outcome.Query,
		Summary:  outcome.Summary,
		Notice:   outcome.Notice,
		Fallback: outcome.Fallback,
	}, nil
}
