package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists courses, enrollments, and sessions in Postgres.
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

// InsertCourse writes a new course. A duplicate join code comes back as
// ErrJoinCodeTaken.
func (r *Repository) InsertCourse(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, host_id, name, join_code, geo_lat, geo_lon,
			late_threshold_minutes, present_threshold_minutes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, c.ID, c.HostID, c.Name, c.JoinCode, c.GeoLat, c.GeoLon,
		c.LateThresholdMinutes, c.PresentThresholdMinutes, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Course{}, ErrJoinCodeTaken
		}
		return Course{}, err
	}
	return c, nil
}

const courseSelect = `
	SELECT c.id, c.host_id, c.name, c.join_code, c.geo_lat, c.geo_lon,
	       c.late_threshold_minutes, c.present_threshold_minutes, c.created_at, u.name
	FROM courses c
	JOIN users u ON c.host_id = u.id`

func scanCourse(row interface{ Scan(...any) error }) (*Course, error) {
	var c Course
	if err := row.Scan(&c.ID, &c.HostID, &c.Name, &c.JoinCode, &c.GeoLat, &c.GeoLon,
		&c.LateThresholdMinutes, &c.PresentThresholdMinutes, &c.CreatedAt, &c.HostName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetCourse returns a course with its host name, or nil when missing.
func (r *Repository) GetCourse(ctx context.Context, id string) (*Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx, courseSelect+` WHERE c.id = $1`, id))
}

// GetCourseByJoinCode returns the course holding the join code, or nil.
func (r *Repository) GetCourseByJoinCode(ctx context.Context, code string) (*Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx, courseSelect+` WHERE c.join_code = $1`, code))
}

// ListCoursesForUser returns courses the user hosts or is enrolled in.
func (r *Repository) ListCoursesForUser(ctx context.Context, userID string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.host_id, c.name, c.join_code, c.geo_lat, c.geo_lon,
		       c.late_threshold_minutes, c.present_threshold_minutes, c.created_at, u.name
		FROM courses c
		JOIN users u ON c.host_id = u.id
		LEFT JOIN enrollments e ON c.id = e.course_id
		WHERE c.host_id = $1 OR e.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

// UpdateCourse applies the non-nil columns.
func (r *Repository) UpdateCourse(ctx context.Context, id string, upd Update) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, val)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.JoinCode != nil {
		add("join_code", *upd.JoinCode)
	}
	if upd.GeoLat != nil {
		add("geo_lat", *upd.GeoLat)
	}
	if upd.GeoLon != nil {
		add("geo_lon", *upd.GeoLon)
	}
	if upd.LateThresholdMinutes != nil {
		add("late_threshold_minutes", *upd.LateThresholdMinutes)
	}
	if upd.PresentThresholdMinutes != nil {
		add("present_threshold_minutes", *upd.PresentThresholdMinutes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := "UPDATE courses SET " + sets[0]
	for _, s := range sets[1:] {
		query += ", " + s
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))
	_, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrJoinCodeTaken
	}
	return err
}

// DeleteCourse removes a course; sessions, attendances, and enrollments
// cascade at the schema level.
func (r *Repository) DeleteCourse(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

// Enroll links the user to the course. A duplicate comes back as
// ErrAlreadyEnrolled.
func (r *Repository) Enroll(ctx context.Context, userID, courseID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
	`, userID, courseID, time.Now().Unix())
	if isUniqueViolation(err) {
		return ErrAlreadyEnrolled
	}
	return err
}

// Unenroll removes the link; reports ErrNotEnrolled when nothing was removed.
func (r *Repository) Unenroll(ctx context.Context, userID, courseID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2
	`, userID, courseID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// IsEnrolled reports whether the user is enrolled in the course.
func (r *Repository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)
	`, userID, courseID)
	var ok bool
	return ok, row.Scan(&ok)
}

// ListEnrollments returns the courses a user joined, with host identity.
func (r *Repository) ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.join_code, c.host_id, u.name, e.enrolled_at
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		JOIN users u ON c.host_id = u.id
		WHERE e.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.CourseID, &e.CourseName, &e.JoinCode, &e.HostID, &e.HostName, &e.EnrolledAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// ListAttendees returns the enrolled users of a course.
func (r *Repository) ListAttendees(ctx context.Context, courseID string) ([]Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, e.enrolled_at
		FROM enrollments e
		JOIN users u ON e.user_id = u.id
		WHERE e.course_id = $1
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.UserID, &a.Name, &a.Email, &a.EnrolledAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// InsertSession writes a new session for a course.
func (r *Repository) InsertSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, course_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.CourseID, s.StartTime, s.EndTime)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// GetSession returns a session by id, or nil when missing.
func (r *Repository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, start_time, end_time FROM sessions WHERE id = $1
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

// ListSessions returns a course's sessions, newest first.
func (r *Repository) ListSessions(ctx context.Context, courseID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, start_time, end_time
		FROM sessions WHERE course_id = $1
		ORDER BY start_time DESC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CourseID, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpdateSession applies the non-nil timing columns.
func (r *Repository) UpdateSession(ctx context.Context, id string, start, end *int64) error {
	sets := []string{}
	args := []any{}
	if start != nil {
		sets = append(sets, fmt.Sprintf("start_time = $%d", len(args)+1))
		args = append(args, *start)
	}
	if end != nil {
		sets = append(sets, fmt.Sprintf("end_time = $%d", len(args)+1))
		args = append(args, *end)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := "UPDATE sessions SET " + sets[0]
	for _, s := range sets[1:] {
		query += ", " + s
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// DeleteSession removes a session; its attendances cascade.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
