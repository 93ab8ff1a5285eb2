package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is the persistence collaborator the service is handed by its caller.
// Lookups return (nil, nil) when the row does not exist; InsertAttendance
// returns an error wrapping ErrDuplicate on a (session, user) uniqueness
// violation.
type Store interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	GetCourseConfig(ctx context.Context, courseID string) (*CourseConfig, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	HasAttendance(ctx context.Context, sessionID, userID string) (bool, error)
	InsertAttendance(ctx context.Context, rec Attendance) (Attendance, error)
	GetAttendance(ctx context.Context, id string) (*Attendance, error)
	ListUnrecorded(ctx context.Context, courseID, sessionID string) ([]UserRef, error)
	ListForUser(ctx context.Context, userID string) ([]UserAttendance, error)
	ListForSession(ctx context.Context, sessionID string) ([]SessionAttendance, error)
	CourseSummary(ctx context.Context, courseID string) ([]UserSummary, error)
	UserCourseSummary(ctx context.Context, courseID, userID string) (*UserSummary, error)
}

// Service coordinates attendance marking and absence reconciliation.
type Service struct {
	store Store
	now   func() int64
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() int64 { return time.Now().Unix() }}
}

// Mark records the caller's attendance for a session. Classification follows
// EvaluateMark against the current server time; proximity is enforced when the
// course has a geofence configured.
func (s *Service) Mark(ctx context.Context, sessionID, callerID string, lat, lon *float64, proof []byte) (Attendance, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Attendance{}, err
	}
	if sess == nil {
		return Attendance{}, ErrNotFound
	}

	enrolled, err := s.store.IsEnrolled(ctx, callerID, sess.CourseID)
	if err != nil {
		return Attendance{}, err
	}
	if !enrolled {
		return Attendance{}, ErrNotEnrolled
	}

	cfg, err := s.store.GetCourseConfig(ctx, sess.CourseID)
	if err != nil {
		return Attendance{}, err
	}
	if cfg == nil {
		return Attendance{}, ErrNotFound
	}
	if cfg.HostID == callerID {
		return Attendance{}, ErrHostSelfMark
	}

	status, err := EvaluateMark(sess.StartTime, sess.EndTime, cfg.PresentThresholdMinutes, cfg.LateThresholdMinutes, s.now())
	if err != nil {
		return Attendance{}, err
	}

	if err := checkGeofence(cfg.GeoLat, cfg.GeoLon, lat, lon); err != nil {
		return Attendance{}, err
	}

	exists, err := s.store.HasAttendance(ctx, sessionID, callerID)
	if err != nil {
		return Attendance{}, err
	}
	if exists {
		return Attendance{}, ErrAlreadyMarked
	}

	rec, err := s.store.InsertAttendance(ctx, Attendance{
		SessionID: sessionID,
		UserID:    callerID,
		Status:    status,
		JoinedAt:  s.now(),
		UserLat:   lat,
		UserLon:   lon,
		Proof:     proof,
	})
	if err != nil {
		// The unique constraint, not the pre-check, decides conflicts.
		if errors.Is(err, ErrDuplicate) {
			return Attendance{}, ErrAlreadyMarked
		}
		return Attendance{}, err
	}
	marksTotal.WithLabelValues(string(status)).Inc()
	return rec, nil
}

// ReconcileAbsent backfills Absent records for every enrolled user with no
// attendance row for the session. Host-only, and only once the admission
// window has closed. Each insert is an independent unit of work: a failing row
// is reported, never escalated, so a rerun is a no-op for already-covered
// users.
func (s *Service) ReconcileAbsent(ctx context.Context, sessionID, callerID string) (int, []string, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, nil, err
	}
	if sess == nil {
		return 0, nil, ErrNotFound
	}

	cfg, err := s.store.GetCourseConfig(ctx, sess.CourseID)
	if err != nil {
		return 0, nil, err
	}
	if cfg == nil {
		return 0, nil, ErrNotFound
	}
	if cfg.HostID != callerID {
		return 0, nil, ErrNotHost
	}

	if s.now() <= admissionDeadline(sess.StartTime, sess.EndTime, cfg.LateThresholdMinutes) {
		return 0, nil, ErrWindowStillOpen
	}

	unrecorded, err := s.store.ListUnrecorded(ctx, sess.CourseID, sessionID)
	if err != nil {
		return 0, nil, err
	}

	marked := 0
	var rowErrs []string
	for _, u := range unrecorded {
		_, err := s.store.InsertAttendance(ctx, Attendance{
			SessionID: sessionID,
			UserID:    u.ID,
			Status:    StatusAbsent,
			JoinedAt:  s.now(),
		})
		switch {
		case err == nil:
			marked++
		case errors.Is(err, ErrDuplicate):
			// Raced a self-mark between the set computation and the insert.
			rowErrs = append(rowErrs, fmt.Sprintf("%s (%s) already has an attendance record", u.Name, u.Email))
		default:
			rowErrs = append(rowErrs, fmt.Sprintf("failed to mark %s (%s) absent: storage error", u.Name, u.Email))
		}
	}
	backfillTotal.Add(float64(marked))
	return marked, rowErrs, nil
}

// Get returns a record to its owner or to the host of its course.
func (s *Service) Get(ctx context.Context, attendanceID, callerID string) (*Attendance, error) {
	rec, err := s.store.GetAttendance(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.UserID == callerID {
		return rec, nil
	}
	host, err := s.sessionHost(ctx, rec.SessionID)
	if err != nil {
		return nil, err
	}
	if host != callerID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// ListForUser returns the user's full attendance history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]UserAttendance, error) {
	return s.store.ListForUser(ctx, userID)
}

// ListForSession returns a session's roster of records, host-only.
func (s *Service) ListForSession(ctx context.Context, sessionID, callerID string) (*Session, []SessionAttendance, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrNotFound
	}
	cfg, err := s.store.GetCourseConfig(ctx, sess.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil || cfg.HostID != callerID {
		return nil, nil, ErrNotHost
	}
	recs, err := s.store.ListForSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return sess, recs, nil
}

// CourseSummary returns per-attendee status counts for the host, or the
// caller's own counts for an enrolled attendee.
func (s *Service) CourseSummary(ctx context.Context, courseID, callerID string) ([]UserSummary, error) {
	cfg, err := s.store.GetCourseConfig(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNotFound
	}
	if cfg.HostID == callerID {
		return s.store.CourseSummary(ctx, courseID)
	}
	enrolled, err := s.store.IsEnrolled(ctx, callerID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrForbidden
	}
	own, err := s.store.UserCourseSummary(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}
	if own == nil {
		return nil, ErrNotFound
	}
	return []UserSummary{*own}, nil
}

func (s *Service) sessionHost(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrNotFound
	}
	cfg, err := s.store.GetCourseConfig(ctx, sess.CourseID)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", ErrNotFound
	}
	return cfg.HostID, nil
}
