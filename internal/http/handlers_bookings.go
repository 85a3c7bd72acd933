package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agenda/internal/core"
	"agenda/internal/log"
	"agenda/internal/records"
	"agenda/internal/services"
)

// handleListBookings answers GET /api/bookings. Any combination of temporal,
// date, provider, counterparty and q narrows the list; a resolver failure
// surfaces as a notice, never as an error status.
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	spec, q, err := parseBookingSearch(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := s.deps.Search.Search(r.Context(), services.SearchRequest{Spec: spec, Query: q})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Fallback {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Smart search fell back to plain filters",
			log.FieldIntentQuery, q, log.FieldCount, len(res.Bookings))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Records.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var b core.Booking
	if err := decodeJSON(w, r, &b); err != nil {
		writeServiceError(w, r, err)
		return
	}
	b.ID = ""
	created, err := s.deps.Records.CreateBooking(r.Context(), b)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/bookings/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var patch records.BookingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.deps.Records.UpdateBooking(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Records.DeleteBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
