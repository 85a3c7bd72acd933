package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agenda/internal/core"
	"agenda/internal/records"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Records.ListEntries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Records.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var e core.LedgerEntry
	if err := decodeJSON(w, r, &e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	e.ID = ""
	created, err := s.deps.Records.CreateEntry(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/ledger/entries/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var patch records.EntryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.deps.Records.UpdateEntry(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Records.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransactions answers GET /api/ledger/transactions with the unified,
// chronologically ordered view.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	spec, err := parseTransactionSpec(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	txs, err := s.deps.Ledger.Transactions(r.Context(), spec)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": s.deps.Money.transactions(txs),
		"count":        len(txs),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Ledger.Balance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Money.balance(b))
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := s.deps.Ledger.Monthly(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": s.deps.Money.months(months)})
}
