package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"agenda/internal/log"
	"agenda/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps a service error onto a status code. Store failures
// become a generic 503 so internals never leak to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest), services.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrStatusRevert):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Record store failure", log.FieldError, err)
		writeError(w, r, http.StatusServiceUnavailable, "could not load records")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled request error", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
