package presence

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const eventColumns = `id::text, employee_id::text, name, registration_number,
	to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI:SS'),
	action, status, note, origin_method, active, created_at`

// uniqueDailyAction is the partial unique index guarding one active event
// per employee, date and action.
const uniqueDailyAction = "presences_daily_action_uniq"

// Repository persists presence events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (Event, error) {
	var evt Event
	err := row.Scan(&evt.ID, &evt.EmployeeID, &evt.Name, &evt.RegistrationNumber, &evt.Date, &evt.Time,
		&evt.Action, &evt.Status, &evt.Note, &evt.OriginMethod, &evt.Active, &evt.CreatedAt)
	return evt, err
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, evt)
	}
	return res, rows.Err()
}

// FindActiveForEmployeeOnDate returns the employee's active events for date
// ordered by time of day.
func (r *Repository) FindActiveForEmployeeOnDate(ctx context.Context, employeeID, date string) ([]Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM presences
		WHERE employee_id = $1 AND event_date = $2::date AND active
		ORDER BY event_time, created_at`, employeeID, date)
}

// Append inserts a new event. A concurrent insert of the same action for
// the same employee and day surfaces as ErrDuplicateAction.
func (r *Repository) Append(ctx context.Context, evt Event) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO presences (id, employee_id, name, registration_number, event_date, event_time,
			action, status, note, origin_method, active)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, evt.ID, evt.EmployeeID, evt.Name, evt.RegistrationNumber, evt.Date, evt.Time,
		evt.Action, evt.Status, evt.Note, evt.OriginMethod, evt.Active)
	if err := row.Scan(&evt.CreatedAt); err != nil {
		if isUniqueViolation(err, uniqueDailyAction) {
			return Event{}, ErrDuplicateAction
		}
		return Event{}, err
	}
	return evt, nil
}

// Get returns a single event by id, active or not.
func (r *Repository) Get(ctx context.Context, id string) (Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Event{}, ErrNotFound
	}
	evt, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM presences WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return evt, err
}

// ListActive returns active events matching f, newest first.
func (r *Repository) ListActive(ctx context.Context, f Filter) ([]Event, error) {
	clauses := []string{"active"}
	args := []any{}
	if f.Date != "" {
		args = append(args, f.Date)
		clauses = append(clauses, "event_date = $"+strconv.Itoa(len(args))+"::date")
	}
	if f.Query != "" {
		args = append(args, f.Query)
		n := strconv.Itoa(len(args))
		clauses = append(clauses, "(name ILIKE '%' || $"+n+" || '%' OR registration_number ILIKE '%' || $"+n+" || '%')")
	}
	if f.EmployeeID != "" {
		if _, err := uuid.Parse(f.EmployeeID); err != nil {
			return nil, nil
		}
		args = append(args, f.EmployeeID)
		clauses = append(clauses, "employee_id = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM presences WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY event_date DESC, event_time DESC`
	return r.query(ctx, query, args...)
}

// Stats counts active events. today is the date counted as "today".
func (r *Repository) Stats(ctx context.Context, today string) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE event_date = $1::date),
			COUNT(*) FILTER (WHERE status = 'success'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM presences WHERE active
	`, today).Scan(&s.Total, &s.Today, &s.Success, &s.Failed)
	return s, err
}

// Update rewrites the editable fields of an event.
func (r *Repository) Update(ctx context.Context, evt Event) (Event, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE presences SET employee_id = $2, name = $3, registration_number = $4, event_date = $5::date,
			event_time = $6::time, action = $7, status = $8, note = $9, origin_method = $10
		WHERE id = $1
	`, evt.ID, evt.EmployeeID, evt.Name, evt.RegistrationNumber, evt.Date, evt.Time,
		evt.Action, evt.Status, evt.Note, evt.OriginMethod)
	if err != nil {
		if isUniqueViolation(err, uniqueDailyAction) {
			return Event{}, ErrDuplicateAction
		}
		return Event{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Event{}, err
	} else if n == 0 {
		return Event{}, ErrNotFound
	}
	return r.Get(ctx, evt.ID)
}

// Deactivate soft-deletes the given events. Unknown ids are ignored.
func (r *Repository) Deactivate(ctx context.Context, ids ...string) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE presences SET active = FALSE WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
