package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"agenda/internal/core"
	"agenda/internal/query"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// parseDateParam reads an optional YYYY-MM-DD value.
func parseDateParam(q url.Values, key string) (*core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseBookingSearch reads temporal, date, provider, counterparty and q.
func parseBookingSearch(q url.Values) (query.Spec, string, error) {
	temporal, err := query.ParseTemporal(q.Get("temporal"))
	if err != nil {
		return query.Spec{}, "", fmt.Errorf("%w: %w", errBadRequest, err)
	}
	onDate, err := parseDateParam(q, "date")
	if err != nil {
		return query.Spec{}, "", err
	}
	spec := query.Spec{
		Temporal:     temporal,
		OnDate:       onDate,
		Provider:     strings.TrimSpace(q.Get("provider")),
		Counterparty: strings.TrimSpace(q.Get("counterparty")),
	}
	return spec, strings.TrimSpace(q.Get("q")), nil
}

// parseTransactionSpec reads direction, status, origin, temporal and date.
func parseTransactionSpec(q url.Values) (query.TransactionSpec, error) {
	temporal, err := query.ParseTemporal(q.Get("temporal"))
	if err != nil {
		return query.TransactionSpec{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	onDate, err := parseDateParam(q, "date")
	if err != nil {
		return query.TransactionSpec{}, err
	}
	spec := query.TransactionSpec{Temporal: temporal, OnDate: onDate}

	if v := strings.TrimSpace(q.Get("direction")); v != "" {
		d := core.Direction(strings.ToLower(v))
		if !d.Valid() {
			return query.TransactionSpec{}, fmt.Errorf("%w: %q", core.ErrInvalidDirection, v)
		}
		spec.Direction = d
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		st := core.Status(strings.ToLower(v))
		if !st.Valid() {
			return query.TransactionSpec{}, fmt.Errorf("%w: %q", core.ErrInvalidStatus, v)
		}
		spec.Status = st
	}
	if v := strings.TrimSpace(q.Get("origin")); v != "" {
		o := core.Origin(strings.ToLower(v))
		if o != core.OriginBooking && o != core.OriginManual {
			return query.TransactionSpec{}, fmt.Errorf("%w: unknown origin %q", errBadRequest, v)
		}
		spec.Origin = o
	}
	return spec, nil
}
