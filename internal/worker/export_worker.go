// Package worker keeps the spreadsheet copy of the ledger up to date.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agenda/internal/amqp"
	"agenda/internal/ledger"
	"agenda/internal/log"
	"agenda/internal/sheets"
)

// Projector produces the current ledger projection.
type Projector interface {
	Project(ctx context.Context) (ledger.Projection, error)
}

// ExportWorker rewrites the exported ledger whenever a record changes.
// Every export is a full rewrite, so messages that arrive while an export is
// in flight and older than its start are acknowledged without another write.
type ExportWorker struct {
	projector Projector
	writer    sheets.LedgerWriter
	logger    *log.Logger

	mu         sync.Mutex
	lastExport time.Time
}

func NewExportWorker(projector Projector, writer sheets.LedgerWriter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		projector: projector,
		writer:    writer,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerChanged is an amqp.Handler.
func (w *ExportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastExport) {
		w.logger.DebugContext(ctx, "Change already exported",
			"kind", msg.Kind, "id", msg.ID, log.FieldOperation, msg.Operation)
		return nil
	}
	w.logger.InfoContext(ctx, "Exporting ledger after change",
		"kind", msg.Kind, "id", msg.ID, log.FieldOperation, msg.Operation)
	return w.exportLocked(ctx)
}

// Export rewrites the exported ledger unconditionally.
func (w *ExportWorker) Export(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exportLocked(ctx)
}

func (w *ExportWorker) exportLocked(ctx context.Context) error {
	start := time.Now()
	p, err := w.projector.Project(ctx)
	if err != nil {
		return fmt.Errorf("project ledger: %w", err)
	}
	l := sheets.Ledger{
		Transactions: p.Transactions,
		Balance:      ledger.Aggregate(p.Transactions),
	}
	if err := w.writer.WriteLedger(ctx, l); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	w.lastExport = start
	w.logger.DebugContext(ctx, "Ledger export finished", log.FieldOperation, log.OpExport,
		log.FieldCount, len(l.Transactions), "skipped", len(p.Skipped),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
