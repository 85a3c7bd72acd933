// Package storage is the SQLite record store. Amounts are stored as decimal
// TEXT so they round-trip exactly.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"agenda/internal/core"
	"agenda/internal/log"
	"agenda/internal/records"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	skips  SkipRecorder
}

// SkipRecorder counts stored rows that could not be decoded.
type SkipRecorder interface {
	ObserveSkipped(origin string, n int)
}

// SetSkipRecorder reports undecodable rows found while listing to rec.
func (r *SQLiteRepository) SetSkipRecorder(rec SkipRecorder) {
	r.skips = rec
}

var _ records.Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	version, err := migrateSchema(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	logger.Info("SQLite schema ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const bookingColumns = `id, booking_date, scheduled_time, check_in, check_out, counterparty_name,
	provider_name, receivable_amount, receivable_status, payable_amount, payable_status`

func (r *SQLiteRepository) ListBookings(ctx context.Context) ([]core.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []core.Booking{}
	skipped := 0
	for rows.Next() {
		b, err := scanBooking(rows)
		var bad *rowError
		if errors.As(err, &bad) {
			r.skipRow(ctx, core.OriginBooking, bad)
			skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	r.countSkipped(core.OriginBooking, skipped)
	return out, nil
}

func (r *SQLiteRepository) GetBooking(ctx context.Context, id string) (core.Booking, bool, error) {
	return getBooking(ctx, r.db, id)
}

func getBooking(ctx context.Context, q querier, id string) (core.Booking, bool, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Booking{}, false, nil
	}
	if err != nil {
		return core.Booking{}, false, err
	}
	return b, true, nil
}

func (r *SQLiteRepository) CreateBooking(ctx context.Context, b core.Booking) (core.Booking, error) {
	b.ID = records.NewID()
	ra, rs := obligationColumns(b.Receivable)
	pa, ps := obligationColumns(b.Payable)
	_, err := r.db.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Date.String(), b.ScheduledTime, b.CheckIn, b.CheckOut,
		b.CounterpartyName, b.ProviderName, ra, rs, pa, ps)
	if err != nil {
		return core.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	r.logger.DebugContext(ctx, "Booking stored", log.FieldBookingID, b.ID)
	return b, nil
}

// UpdateBooking applies patch inside a transaction. Concurrent updates are
// last-write-wins.
func (r *SQLiteRepository) UpdateBooking(ctx context.Context, id string, patch records.BookingPatch) (core.Booking, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Booking{}, false, fmt.Errorf("begin update booking: %w", err)
	}
	defer tx.Rollback()

	cur, found, err := getBooking(ctx, tx, id)
	if err != nil || !found {
		return core.Booking{}, found, err
	}
	b := patch.Apply(cur)
	ra, rs := obligationColumns(b.Receivable)
	pa, ps := obligationColumns(b.Payable)
	_, err = tx.ExecContext(ctx, `UPDATE bookings SET
		booking_date = ?, scheduled_time = ?, check_in = ?, check_out = ?,
		counterparty_name = ?, provider_name = ?,
		receivable_amount = ?, receivable_status = ?, payable_amount = ?, payable_status = ?,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.Date.String(), b.ScheduledTime, b.CheckIn, b.CheckOut,
		b.CounterpartyName, b.ProviderName, ra, rs, pa, ps, id)
	if err != nil {
		return core.Booking{}, false, fmt.Errorf("update booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Booking{}, false, fmt.Errorf("commit update booking: %w", err)
	}
	return b, true, nil
}

func (r *SQLiteRepository) DeleteBooking(ctx context.Context, id string) (bool, error) {
	return r.delete(ctx, `DELETE FROM bookings WHERE id = ?`, id)
}

const entryColumns = `id, description, amount, direction, status, entry_date`

func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	out := []core.LedgerEntry{}
	skipped := 0
	for rows.Next() {
		e, err := scanEntry(rows)
		var bad *rowError
		if errors.As(err, &bad) {
			r.skipRow(ctx, core.OriginManual, bad)
			skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	r.countSkipped(core.OriginManual, skipped)
	return out, nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.LedgerEntry, bool, error) {
	return getEntry(ctx, r.db, id)
}

func getEntry(ctx context.Context, q querier, id string) (core.LedgerEntry, bool, error) {
	e, err := scanEntry(q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerEntry{}, false, nil
	}
	if err != nil {
		return core.LedgerEntry{}, false, err
	}
	return e, true, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	e.ID = records.NewID()
	_, err := r.db.ExecContext(ctx, `INSERT INTO ledger_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.Value.String(), string(e.Direction), string(e.Status), e.Date.String())
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}
	r.logger.DebugContext(ctx, "Ledger entry stored", log.FieldEntryID, e.ID)
	return e, nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id string, patch records.EntryPatch) (core.LedgerEntry, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.LedgerEntry{}, false, fmt.Errorf("begin update ledger entry: %w", err)
	}
	defer tx.Rollback()

	cur, found, err := getEntry(ctx, tx, id)
	if err != nil || !found {
		return core.LedgerEntry{}, found, err
	}
	e := patch.Apply(cur)
	_, err = tx.ExecContext(ctx, `UPDATE ledger_entries SET
		description = ?, amount = ?, direction = ?, status = ?, entry_date = ?,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		e.Description, e.Amount.Value.String(), string(e.Direction), string(e.Status), e.Date.String(), id)
	if err != nil {
		return core.LedgerEntry{}, false, fmt.Errorf("update ledger entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.LedgerEntry{}, false, fmt.Errorf("commit update ledger entry: %w", err)
	}
	return e, true, nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) (bool, error) {
	return r.delete(ctx, `DELETE FROM ledger_entries WHERE id = ?`, id)
}

func (r *SQLiteRepository) delete(ctx context.Context, stmt, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	return n > 0, nil
}

// rowError is a row that scanned but whose columns do not decode. Lists skip
// such rows; single-record reads still fail on them.
type rowError struct {
	id  string
	err error
}

func (e *rowError) Error() string { return e.err.Error() }
func (e *rowError) Unwrap() error { return e.err }

func (r *SQLiteRepository) skipRow(ctx context.Context, origin core.Origin, bad *rowError) {
	r.logger.WarnContext(ctx, "Skipping undecodable row",
		log.FieldOperation, log.OpList, log.FieldSourceID, bad.id,
		log.FieldOrigin, string(origin), log.FieldReason, bad.err.Error())
}

func (r *SQLiteRepository) countSkipped(origin core.Origin, n int) {
	if r.skips != nil && n > 0 {
		r.skips.ObserveSkipped(string(origin), n)
	}
}

func scanBooking(s scanner) (core.Booking, error) {
	var (
		b              core.Booking
		date           string
		ra, rs, pa, ps sql.NullString
	)
	err := s.Scan(&b.ID, &date, &b.ScheduledTime, &b.CheckIn, &b.CheckOut,
		&b.CounterpartyName, &b.ProviderName, &ra, &rs, &pa, &ps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Booking{}, err
		}
		return core.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	if b.Date, err = core.ParseDate(date); err != nil {
		return core.Booking{}, &rowError{id: b.ID, err: fmt.Errorf("booking %s: %w", b.ID, err)}
	}
	if b.Receivable, err = obligationFrom(ra, rs); err != nil {
		return core.Booking{}, &rowError{id: b.ID, err: fmt.Errorf("booking %s receivable: %w", b.ID, err)}
	}
	if b.Payable, err = obligationFrom(pa, ps); err != nil {
		return core.Booking{}, &rowError{id: b.ID, err: fmt.Errorf("booking %s payable: %w", b.ID, err)}
	}
	return b, nil
}

func scanEntry(s scanner) (core.LedgerEntry, error) {
	var (
		e                         core.LedgerEntry
		amount, dir, status, date string
	)
	if err := s.Scan(&e.ID, &e.Description, &amount, &dir, &status, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LedgerEntry{}, err
		}
		return core.LedgerEntry{}, fmt.Errorf("scan ledger entry: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.LedgerEntry{}, &rowError{id: e.ID, err: fmt.Errorf("ledger entry %s amount: %w", e.ID, err)}
	}
	e.Amount = core.MoneyFromDecimal(d)
	e.Direction = core.Direction(dir)
	e.Status = core.Status(status)
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.LedgerEntry{}, &rowError{id: e.ID, err: fmt.Errorf("ledger entry %s: %w", e.ID, err)}
	}
	return e, nil
}

func obligationColumns(o *core.Obligation) (amount, status sql.NullString) {
	if o == nil {
		return amount, status
	}
	return sql.NullString{String: o.Amount.Value.String(), Valid: true},
		sql.NullString{String: string(o.Status), Valid: true}
}

func obligationFrom(amount, status sql.NullString) (*core.Obligation, error) {
	if !amount.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(amount.String)
	if err != nil {
		return nil, err
	}
	return &core.Obligation{Amount: core.MoneyFromDecimal(d), Status: core.Status(status.String)}, nil
}
