package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on startup. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id                  UUID PRIMARY KEY,
	last_name           TEXT NOT NULL,
	first_name          TEXT NOT NULL,
	registration_number TEXT NOT NULL CONSTRAINT employees_registration_number_key UNIQUE,
	email               TEXT,
	phone               TEXT NOT NULL DEFAULT '',
	department          TEXT NOT NULL DEFAULT '',
	position            TEXT NOT NULL DEFAULT '',
	hire_date           DATE,
	address             TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL DEFAULT '',
	postal_code         TEXT NOT NULL DEFAULT '',
	has_user_account    BOOLEAN NOT NULL DEFAULT FALSE,
	qr_code_data        TEXT NOT NULL DEFAULT '',
	active              BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS employees_email_uniq ON employees (lower(email)) WHERE email IS NOT NULL;
CREATE INDEX IF NOT EXISTS employees_department_idx ON employees (department) WHERE active;

CREATE TABLE IF NOT EXISTS presences (
	id                  UUID PRIMARY KEY,
	employee_id         UUID REFERENCES employees(id),
	name                TEXT NOT NULL,
	registration_number TEXT NOT NULL,
	event_date          DATE NOT NULL,
	event_time          TIME NOT NULL,
	action              TEXT NOT NULL,
	status              TEXT NOT NULL,
	note                TEXT NOT NULL DEFAULT '',
	origin_method       TEXT NOT NULL DEFAULT 'MANUAL',
	active              BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS presences_daily_action_uniq
	ON presences (employee_id, event_date, action) WHERE active AND employee_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS presences_date_idx ON presences (event_date) WHERE active;

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (lower(email));

CREATE TABLE IF NOT EXISTS admins (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS admins_email_uniq ON admins (lower(email));
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
