// Package intent talks to the external text-understanding service that turns
// a free-text booking search into a set of relevant name fragments.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agenda/internal/cache"
)

// Request is sent to the resolver.
type Request struct {
	Query string `json:"query"`
}

// Response is what the resolver answers: a short human summary of the query
// and the provider or counterparty names it considers relevant.
type Response struct {
	Summary             string   `json:"summary"`
	RelevantIdentifiers []string `json:"relevantIdentifiers"`
}

// Resolver interprets a free-text query. Implementations must honor ctx.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (Response, error)
}

const maxResponseBytes = 1 << 20

// HTTPResolver posts the request as JSON to a remote endpoint.
type HTTPResolver struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPResolver returns a resolver for endpoint. An empty apiKey sends no
// Authorization header. client may be nil.
func NewHTTPResolver(endpoint, apiKey string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPResolver{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (r *HTTPResolver) Resolve(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode intent request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build intent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("intent request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Response{}, fmt.Errorf("intent service returned %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode intent response: %w", err)
	}
	return out, nil
}

// CachedResolver memoizes successful resolutions per normalized query.
type CachedResolver struct {
	next  Resolver
	cache cache.Cache[Response]
}

func NewCachedResolver(next Resolver, c cache.Cache[Response]) *CachedResolver {
	return &CachedResolver{next: next, cache: c}
}

func (r *CachedResolver) Resolve(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(req.Query)
	if resp, ok := r.cache.Get(ctx, key); ok {
		return resp, nil
	}
	resp, err := r.next.Resolve(ctx, req)
	if err != nil {
		return Response{}, err
	}
	r.cache.Set(ctx, key, resp)
	return resp, nil
}

// cacheKey folds case and whitespace so trivially different spellings share
// an entry.
func cacheKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
