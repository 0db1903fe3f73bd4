package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrSlotTaken reports a booking collision for a date/time slot.
var ErrSlotTaken = errors.New("bookings: slot already taken")

// Appointment is one stored appointment row.
type Appointment struct {
	ID               int64
	UserID           string
	Date             string // DD-MM-YYYY
	Time             string // HH:MM
	ServiceType      string
	ProfessionalName string
}

// Repository provides persistence for appointments and users on SQLite.
// Appointment ids are integer autoincrement values, which is what users type
// back in during view/cancel flows.
type Repository struct {
	db *sql.DB

	// Serializes check-then-insert so two sessions racing for the same
	// slot cannot both pass the availability check.
	writeMu sync.Mutex
}

// NewRepository creates a repository backed by an open database handle.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("bookings: db handle required")
	}
	return &Repository{db: db}
}

// Init creates the schema when it does not exist yet. cmd/migrate applies
// the same schema through golang-migrate; Init keeps the zero-setup
// terminal agent working against a fresh database file.
func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	service_type TEXT NOT NULL,
	professional_name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("bookings: init schema: %w", err)
	}
	return nil
}

// UpsertUser records the session user's display name.
func (r *Repository) UpsertUser(ctx context.Context, userID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		userID, name)
	if err != nil {
		return fmt.Errorf("bookings: upsert user: %w", err)
	}
	return nil
}

// CheckAvailability reports whether a date/time slot is free. An
// excludingID > 0 ignores that appointment, so a reschedule does not
// collide with its own slot. This is a point-in-time read; CreateAppointment
// re-checks inside its write transaction before inserting.
func (r *Repository) CheckAvailability(ctx context.Context, date, timeOfDay string, excludingID int64) (bool, error) {
	var taken int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE date = ? AND time = ? AND id != ?`,
		date, timeOfDay, excludingID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("bookings: availability check: %w", err)
	}
	return taken == 0, nil
}

// CreateAppointment inserts an appointment after re-checking that the slot
// is free. The availability check and the insert happen inside one write
// transaction, so a conflicting booking either sees the row or loses the
// slot; it cannot interleave.
func (r *Repository) CreateAppointment(ctx context.Context, appt *Appointment) (int64, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("bookings: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE date = ? AND time = ?`,
		appt.Date, appt.Time).Scan(&taken)
	if err != nil {
		return 0, fmt.Errorf("bookings: availability check: %w", err)
	}
	if taken > 0 {
		return 0, ErrSlotTaken
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (user_id, date, time, service_type, professional_name)
		 VALUES (?, ?, ?, ?, ?)`,
		appt.UserID, appt.Date, appt.Time, appt.ServiceType, appt.ProfessionalName)
	if err != nil {
		return 0, fmt.Errorf("bookings: insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bookings: appointment id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bookings: commit insert: %w", err)
	}
	return id, nil
}

// GetByID loads a single appointment. A missing id returns (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	var appt Appointment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, time, service_type, professional_name
		 FROM appointments WHERE id = ?`, id).
		Scan(&appt.ID, &appt.UserID, &appt.Date, &appt.Time, &appt.ServiceType, &appt.ProfessionalName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: load appointment: %w", err)
	}
	return &appt, nil
}

// Exists reports whether an appointment id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("bookings: existence check: %w", err)
	}
	return count > 0, nil
}

// Delete removes an appointment and reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("bookings: delete appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bookings: delete result: %w", err)
	}
	return affected > 0, nil
}

// ListByUser returns all appointments booked under a session user id.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, time, service_type, professional_name
		 FROM appointments WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(&appt.ID, &appt.UserID, &appt.Date, &appt.Time, &appt.ServiceType, &appt.ProfessionalName); err != nil {
			return nil, fmt.Errorf("bookings: scan appointment: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate appointments: %w", err)
	}
	return out, nil
}
