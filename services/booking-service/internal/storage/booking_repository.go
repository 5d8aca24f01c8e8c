package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nazmul-karim/slotbook/libs/db"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/availability"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const bookingColumns = `
	id::text, company_id::text, professional_id::text, service_id::text,
	to_char(date, 'YYYY-MM-DD'), start_min, duration_min, status,
	customer_name, customer_phone, COALESCE(customer_id::text, ''),
	staff_entered, created_at, updated_at, cancelled_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	var status string
	var cancelledAt *time.Time
	if err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.ProfessionalID,
		&b.ServiceID,
		&b.Date,
		&b.StartMin,
		&b.DurationMin,
		&status,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerID,
		&b.StaffEntered,
		&b.CreatedAt,
		&b.UpdatedAt,
		&cancelledAt,
	); err != nil {
		return model.Booking{}, err
	}
	b.Status = lifecycle.Status(status)
	b.CancelledAt = cancelledAt
	return b, nil
}

func (r *BookingRepository) Insert(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	var customerID any
	if b.CustomerID != "" {
		customerID = b.CustomerID
	}
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO bookings
			(company_id, professional_id, service_id, date, start_min, duration_min,
			 status, customer_name, customer_phone, customer_id, staff_entered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text
	`, b.CompanyID, b.ProfessionalID, b.ServiceID, b.Date, b.StartMin, b.DurationMin,
		string(b.Status), b.CustomerName, b.CustomerPhone, customerID, b.StaffEntered).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateSchedule rewrites the slot-defining fields of an existing booking.
// Status is deliberately untouched: a reschedule is not a lifecycle move.
func (r *BookingRepository) UpdateSchedule(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET professional_id = $3,
			service_id = $4,
			date = $5,
			start_min = $6,
			duration_min = $7,
			updated_at = now()
		WHERE id = $1 AND company_id = $2
	`, b.ID, b.CompanyID, b.ProfessionalID, b.ServiceID, b.Date, b.StartMin, b.DurationMin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, companyID, bookingID string, status lifecycle.Status) error {
	var cancelledAt any
	if status == lifecycle.StatusCancelled {
		cancelledAt = time.Now().UTC()
	}
	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $3,
			cancelled_at = COALESCE($4, cancelled_at),
			updated_at = now()
		WHERE id = $1 AND company_id = $2
	`, bookingID, companyID, string(status), cancelledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, companyID, bookingID string) (model.Booking, error) {
	return scanBooking(tx.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1 AND company_id = $2
		FOR UPDATE
	`, bookingID, companyID))
}

func (r *BookingRepository) Get(ctx context.Context, companyID, bookingID string) (model.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1 AND company_id = $2
	`, bookingID, companyID))
}

// ListActiveIntervals returns the occupied intervals for one professional on
// one date. Cancelled bookings never block a slot. Pass the commit
// transaction as tx so the conflict scan sees the latest booking set;
// a nil tx reads from the pool for advisory slot listings.
func (r *BookingRepository) ListActiveIntervals(ctx context.Context, tx pgx.Tx, companyID, professionalID, date string) ([]availability.BusyInterval, error) {
	q := querier(r.pool)
	if tx != nil {
		q = tx
	}
	rows, err := q.Query(ctx, `
		SELECT id::text, start_min, start_min + duration_min
		FROM bookings
		WHERE company_id = $1
			AND professional_id = $2
			AND date = $3
			AND status IN ('pending', 'confirmed', 'completed')
		ORDER BY start_min ASC
	`, companyID, professionalID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []availability.BusyInterval
	for rows.Next() {
		var b availability.BusyInterval
		if err := rows.Scan(&b.BookingID, &b.StartMin, &b.EndMin); err != nil {
			return nil, err
		}
		busy = append(busy, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return busy, nil
}

func (r *BookingRepository) ListForDay(ctx context.Context, companyID, professionalID, date string, includeCancelled bool) ([]model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE company_id = $1
			AND professional_id = $2
			AND date = $3`
	if !includeCancelled {
		query += `
			AND status <> 'cancelled'`
	}
	query += `
		ORDER BY start_min ASC`

	rows, err := r.pool.Query(ctx, query, companyID, professionalID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *BookingRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE company_id = $1
		ORDER BY date DESC, start_min DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// LockIdempotencyKey claims a client-supplied key inside the commit
// transaction. When the key was already finalized it returns the booking id
// of the earlier attempt so a retried request replays the same outcome.
func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, companyID, key string) (string, bool, error) {
	bookingID, err := r.selectIdempotencyForUpdate(ctx, tx, companyID, key)
	if err == nil {
		return bookingID, bookingID != "", nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (company_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (company_id, idempotency_key) DO NOTHING
	`, companyID, key)
	if err != nil {
		return "", false, err
	}

	bookingID, err = r.selectIdempotencyForUpdate(ctx, tx, companyID, key)
	if err != nil {
		return "", false, err
	}
	return bookingID, bookingID != "", nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, companyID, key, bookingID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET booking_id = $3,
			updated_at = now()
		WHERE company_id = $1 AND idempotency_key = $2
	`, companyID, key, bookingID)
	return err
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, companyID, key string) (string, error) {
	var bookingID string
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(booking_id::text, '')
		FROM booking_idempotency_keys
		WHERE company_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, companyID, key).Scan(&bookingID)
	return bookingID, err
}

// IsConflict recognizes the exclusion-constraint violation raised by the
// storage backstop when two transactions race for overlapping slots.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
