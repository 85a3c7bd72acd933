// Package memory is a LedgerWriter that keeps the last export in process.
// It backs the export worker in development and tests.
package memory

import (
	"context"
	"sync"

	"agenda/internal/sheets"
)

type Writer struct {
	mu     sync.Mutex
	last   sheets.Ledger
	writes int
}

var _ sheets.LedgerWriter = (*Writer)(nil)

func New() *Writer { return &Writer{} }

func (w *Writer) WriteLedger(_ context.Context, l sheets.Ledger) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = l
	w.writes++
	return nil
}

// Last returns the most recent export and how many exports happened.
func (w *Writer) Last() (sheets.Ledger, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.writes
}
