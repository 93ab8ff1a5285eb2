package store

import (
	"context"
	"database/sql"
)

// Schema statements are idempotent so startup can re-run them safely.
// The UNIQUE (session_id, user_id) constraint on attendances is the single
// serialization point between concurrent self-marks and absence backfill.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id                        TEXT PRIMARY KEY,
		host_id                   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name                      TEXT NOT NULL,
		join_code                 TEXT NOT NULL UNIQUE,
		geo_lat                   DOUBLE PRECISION,
		geo_lon                   DOUBLE PRECISION,
		late_threshold_minutes    INTEGER NOT NULL DEFAULT 10,
		present_threshold_minutes INTEGER NOT NULL DEFAULT 0,
		created_at                BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course_id   TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		enrolled_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		start_time BIGINT NOT NULL,
		end_time   BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS attendances (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status     TEXT NOT NULL,
		joined_at  BIGINT NOT NULL,
		user_lat   DOUBLE PRECISION,
		user_lon   DOUBLE PRECISION,
		proof      BYTEA,
		UNIQUE (session_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_course ON sessions (course_id, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_user ON attendances (user_id, joined_at DESC)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
