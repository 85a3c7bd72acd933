package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"agenda/internal/log"
	"agenda/internal/query"
)

// Resolution results reported to the Recorder.
const (
	ResultResolved    = "resolved"
	ResultError       = "error"
	ResultTimeout     = "timeout"
	ResultUnhelpful   = "unhelpful"
	ResultUnavailable = "unavailable"
)

const (
	NoticeUnavailable = "Smart search is unavailable right now; showing all matching bookings instead."
	NoticeUnhelpful   = "Smart search could not interpret that query; showing all matching bookings instead."
)

var ErrUnavailable = errors.New("intent resolver not configured")

// Recorder observes resolver calls. The prometheus metrics satisfy it.
type Recorder interface {
	ObserveIntent(result string, elapsed time.Duration)
}

// Outcome is the result of guarding a resolver call. A nil Relevance means
// the query imposes no constraint, either because it was blank or because the
// resolver could not help; Fallback distinguishes the two.
type Outcome struct {
	Query     string
	Summary   string
	Relevance query.RelevanceSet
	Fallback  bool
	Notice    string
	Err       error
}

// Guard bounds resolver calls in time and converts every failure into a
// fallback Outcome. It never returns an error.
type Guard struct {
	resolver Resolver
	timeout  time.Duration
	logger   *log.Logger
	recorder Recorder
}

// NewGuard wraps resolver, which may be nil when smart search is disabled.
// recorder may be nil.
func NewGuard(resolver Resolver, timeout time.Duration, logger *log.Logger, recorder Recorder) *Guard {
	return &Guard{
		resolver: resolver,
		timeout:  timeout,
		logger:   logger.WithComponent(log.ComponentIntent).With(log.FieldOperation, log.OpResolve),
		recorder: recorder,
	}
}

type result struct {
	resp Response
	err  error
}

// Resolve interprets q. It returns within the configured timeout even when
// the resolver ignores cancellation.
func (g *Guard) Resolve(ctx context.Context, q string) Outcome {
	q = strings.TrimSpace(q)
	if q == "" {
		return Outcome{}
	}
	if g.resolver == nil {
		g.observe(ResultUnavailable, 0)
		return fallback(q, NoticeUnavailable, ErrUnavailable)
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		resp, err := g.resolver.Resolve(callCtx, Request{Query: q})
		done <- result{resp: resp, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = result{err: callCtx.Err()}
	}
	elapsed := time.Since(start)

	if res.err != nil {
		outcome := ResultError
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = ResultTimeout
		}
		g.observe(outcome, elapsed)
		g.logger.WarnContext(ctx, "Intent resolution failed, falling back",
			log.FieldIntentQuery, q, log.FieldReason, outcome, log.FieldError, res.err)
		return fallback(q, NoticeUnavailable, res.err)
	}

	set := query.NewRelevanceSet(res.resp.RelevantIdentifiers)
	if len(set) == 0 {
		g.observe(ResultUnhelpful, elapsed)
		g.logger.InfoContext(ctx, "Intent resolver returned no identifiers",
			log.FieldIntentQuery, q, "summary", res.resp.Summary)
		out := fallback(q, NoticeUnhelpful, nil)
		out.Summary = res.resp.Summary
		return out
	}

	g.observe(ResultResolved, elapsed)
	g.logger.DebugContext(ctx, "Intent resolved",
		log.FieldIntentQuery, q, log.FieldCount, len(set))
	return Outcome{Query: q, Summary: res.resp.Summary, Relevance: set}
}

func (g *Guard) observe(result string, elapsed time.Duration) {
	if g.recorder != nil {
		g.recorder.ObserveIntent(result, elapsed)
	}
}

func fallback(q, notice string, err error) Outcome {
	return Outcome{Query: q, Fallback: true, Notice: notice, Err: err}
}
