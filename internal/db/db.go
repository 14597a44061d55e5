package db

import (
	"database/sql"

	_ "github.com/lib/pq"
)

func Connect(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables on first boot. Idempotent.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         SERIAL PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS classes (
			id                 TEXT PRIMARY KEY,
			user_id            INT NOT NULL REFERENCES users(id),
			name               TEXT NOT NULL,
			difficulty         INT NOT NULL,
			teacher_name       TEXT NOT NULL,
			teacher_strictness INT NOT NULL,
			color              TEXT NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			user_id        INT NOT NULL REFERENCES users(id),
			class_id       TEXT REFERENCES classes(id),
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			due_date       TIMESTAMPTZ NOT NULL,
			priority       INT NOT NULL,
			estimated_time DOUBLE PRECISION NOT NULL,
			status         TEXT NOT NULL DEFAULT 'PENDING',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS analytics_events (
			id               BIGSERIAL PRIMARY KEY,
			event_name       TEXT NOT NULL,
			event_time       TIMESTAMPTZ NOT NULL,
			user_id          INT NOT NULL,
			session_id       TEXT,
			platform         TEXT,
			app_version      TEXT,
			device_locale    TEXT,
			ip_country       TEXT,
			source_event_key TEXT UNIQUE,
			properties       JSONB
		);
	`)
	return err
}
