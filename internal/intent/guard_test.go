package intent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/log"
)

type resolverFunc func(ctx context.Context, req Request) (Response, error)

func (f resolverFunc) Resolve(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

type recorder struct {
	mu      sync.Mutex
	results []string
}

func (r *recorder) ObserveIntent(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func TestGuardBlankQueryImposesNothing(t *testing.T) {
	called := false
	g := NewGuard(resolverFunc(func(context.Context, Request) (Response, error) {
		called = true
		return Response{}, nil
	}), time.Second, log.Discard(), nil)

	out := g.Resolve(context.Background(), "   ")
	assert.False(t, called)
	assert.Nil(t, out.Relevance)
	assert.False(t, out.Fallback)
	assert.Empty(t, out.Notice)
}

func TestGuardResolved(t *testing.T) {
	rec := &recorder{}
	g := NewGuard(resolverFunc(func(_ context.Context, req Request) (Response, error) {
		assert.Equal(t, "joana", req.Query)
		return Response{Summary: "Joana", RelevantIdentifiers: []string{"Joana", " "}}, nil
	}), time.Second, log.Discard(), rec)

	out := g.Resolve(context.Background(), " joana ")
	require.NotNil(t, out.Relevance)
	assert.Equal(t, []string{"joana"}, out.Relevance.Tokens())
	assert.Equal(t, "Joana", out.Summary)
	assert.False(t, out.Fallback)
	assert.Empty(t, out.Notice)
	assert.Equal(t, []string{ResultResolved}, rec.results)
}

func TestGuardFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		resolver Resolver
		result   string
		notice   string
	}{
		{
			name:   "not configured",
			result: ResultUnavailable,
			notice: NoticeUnavailable,
		},
		{
			name: "error",
			resolver: resolverFunc(func(context.Context, Request) (Response, error) {
				return Response{}, errors.New("connection refused")
			}),
			result: ResultError,
			notice: NoticeUnavailable,
		},
		{
			name: "timeout honoring context",
			resolver: resolverFunc(func(ctx context.Context, _ Request) (Response, error) {
				<-ctx.Done()
				return Response{}, ctx.Err()
			}),
			result: ResultTimeout,
			notice: NoticeUnavailable,
		},
		{
			name: "timeout ignoring context",
			resolver: resolverFunc(func(context.Context, Request) (Response, error) {
				time.Sleep(300 * time.Millisecond)
				return Response{RelevantIdentifiers: []string{"late"}}, nil
			}),
			result: ResultTimeout,
			notice: NoticeUnavailable,
		},
		{
			name: "no identifiers",
			resolver: resolverFunc(func(context.Context, Request) (Response, error) {
				return Response{Summary: "no idea", RelevantIdentifiers: []string{"", "  "}}, nil
			}),
			result: ResultUnhelpful,
			notice: NoticeUnhelpful,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := NewGuard(tt.resolver, 50*time.Millisecond, log.Discard(), rec)

			start := time.Now()
			out := g.Resolve(context.Background(), "who is coming")
			assert.Less(t, time.Since(start), 250*time.Millisecond)

			assert.Nil(t, out.Relevance)
			assert.True(t, out.Fallback)
			assert.Equal(t, tt.notice, out.Notice)
			assert.Equal(t, "who is coming", out.Query)
			assert.Equal(t, []string{tt.result}, rec.results)
		})
	}
}
