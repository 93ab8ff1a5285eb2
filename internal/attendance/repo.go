package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists attendance data in Postgres. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetSession returns a session's timing view, or nil when missing.
func (r *Repository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, start_time, end_time
		FROM sessions WHERE id = $1
	`, id)
	var s Session
	if err := row.Scan(&s.ID, &s.CourseID, &s.StartTime, &s.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetCourseConfig returns the host and temporal/geo config of a course.
func (r *Repository) GetCourseConfig(ctx context.Context, courseID string) (*CourseConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT host_id, geo_lat, geo_lon, present_threshold_minutes, COALESCE(late_threshold_minutes, 0)
		FROM courses WHERE id = $1
	`, courseID)
	var cfg CourseConfig
	if err := row.Scan(&cfg.HostID, &cfg.GeoLat, &cfg.GeoLon, &cfg.PresentThresholdMinutes, &cfg.LateThresholdMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// IsEnrolled reports whether the user is enrolled in the course.
func (r *Repository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)
	`, userID, courseID)
	var ok bool
	return ok, row.Scan(&ok)
}

// HasAttendance reports whether a record exists for (session, user).
func (r *Repository) HasAttendance(ctx context.Context, sessionID, userID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM attendances WHERE session_id = $1 AND user_id = $2)
	`, sessionID, userID)
	var ok bool
	return ok, row.Scan(&ok)
}

// InsertAttendance writes a new record. A (session, user) uniqueness violation
// comes back wrapping ErrDuplicate.
func (r *Repository) InsertAttendance(ctx context.Context, rec Attendance) (Attendance, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendances (id, session_id, user_id, status, joined_at, user_lat, user_lon, proof)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.SessionID, rec.UserID, rec.Status, rec.JoinedAt, rec.UserLat, rec.UserLon, rec.Proof)
	if err != nil {
		if isUniqueViolation(err) {
			return Attendance{}, fmt.Errorf("attendance insert for session %s user %s: %w", rec.SessionID, rec.UserID, ErrDuplicate)
		}
		return Attendance{}, err
	}
	return rec, nil
}

// GetAttendance returns a single record by id, or nil when missing.
func (r *Repository) GetAttendance(ctx context.Context, id string) (*Attendance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, user_id, status, joined_at, user_lat, user_lon, proof
		FROM attendances WHERE id = $1
	`, id)
	var rec Attendance
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &rec.Status, &rec.JoinedAt, &rec.UserLat, &rec.UserLon, &rec.Proof); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListUnrecorded returns enrolled users with no attendance row for the session.
func (r *Repository) ListUnrecorded(ctx context.Context, courseID, sessionID string) ([]UserRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email
		FROM users u
		JOIN enrollments e ON u.id = e.user_id
		WHERE e.course_id = $1
		AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.session_id = $2 AND a.user_id = u.id
		)
	`, courseID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []UserRef
	for rows.Next() {
		var u UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// ListForUser returns a user's records with session and course context.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]UserAttendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.session_id, a.user_id, a.status, a.joined_at, a.user_lat, a.user_lon,
		       s.start_time, s.end_time, c.id, c.name
		FROM attendances a
		JOIN sessions s ON a.session_id = s.id
		JOIN courses c ON s.course_id = c.id
		WHERE a.user_id = $1
		ORDER BY a.joined_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []UserAttendance
	for rows.Next() {
		var ua UserAttendance
		if err := rows.Scan(&ua.ID, &ua.SessionID, &ua.UserID, &ua.Status, &ua.JoinedAt, &ua.UserLat, &ua.UserLon,
			&ua.SessionStartTime, &ua.SessionEndTime, &ua.CourseID, &ua.CourseName); err != nil {
			return nil, err
		}
		res = append(res, ua)
	}
	return res, rows.Err()
}

// ListForSession returns a session's records with attendee identity.
func (r *Repository) ListForSession(ctx context.Context, sessionID string) ([]SessionAttendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.session_id, a.user_id, a.status, a.joined_at, a.user_lat, a.user_lon,
		       u.name, u.email
		FROM attendances a
		JOIN users u ON a.user_id = u.id
		WHERE a.session_id = $1
		ORDER BY a.joined_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []SessionAttendance
	for rows.Next() {
		var sa SessionAttendance
		if err := rows.Scan(&sa.ID, &sa.SessionID, &sa.UserID, &sa.Status, &sa.JoinedAt, &sa.UserLat, &sa.UserLon,
			&sa.UserName, &sa.UserEmail); err != nil {
			return nil, err
		}
		res = append(res, sa)
	}
	return res, rows.Err()
}

const summarySelect = `
	SELECT u.id, u.name, u.email,
	       COUNT(*) FILTER (WHERE a.status = 'Present'),
	       COUNT(*) FILTER (WHERE a.status = 'Late'),
	       COUNT(*) FILTER (WHERE a.status = 'Absent'),
	       COUNT(DISTINCT s.id)
	FROM users u
	JOIN enrollments e ON u.id = e.user_id
	LEFT JOIN sessions s ON s.course_id = e.course_id
	LEFT JOIN attendances a ON a.session_id = s.id AND a.user_id = u.id
	WHERE e.course_id = $1`

// CourseSummary aggregates counts for every enrolled user of the course.
func (r *Repository) CourseSummary(ctx context.Context, courseID string) ([]UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, summarySelect+`
		GROUP BY u.id, u.name, u.email
		ORDER BY u.name
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.UserID, &s.Name, &s.Email, &s.PresentCount, &s.LateCount, &s.AbsentCount, &s.TotalSessions); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UserCourseSummary aggregates counts for one enrolled user, or nil when the
// user has no enrollment row for the course.
func (r *Repository) UserCourseSummary(ctx context.Context, courseID, userID string) (*UserSummary, error) {
	row := r.db.QueryRowContext(ctx, summarySelect+`
		AND u.id = $2
		GROUP BY u.id, u.name, u.email
	`, courseID, userID)
	var s UserSummary
	if err := row.Scan(&s.UserID, &s.Name, &s.Email, &s.PresentCount, &s.LateCount, &s.AbsentCount, &s.TotalSessions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
