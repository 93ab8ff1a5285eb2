package course

import "context"

// Service enforces the host/enrollment authorization rules around course,
// enrollment, and session persistence.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a course owned by the host.
func (s *Service) Create(ctx context.Context, c Course) (Course, error) {
	return s.repo.InsertCourse(ctx, c)
}

// ListForUser returns courses the caller hosts or attends.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Course, error) {
	return s.repo.ListCoursesForUser(ctx, userID)
}

// Get returns a course to its host or an enrolled attendee.
func (s *Service) Get(ctx context.Context, courseID, callerID string) (*Course, error) {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.HostID != callerID {
		enrolled, err := s.repo.IsEnrolled(ctx, callerID, courseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrForbidden
		}
	}
	return c, nil
}

// Update applies host-only course changes. A changed join code must stay
// unique across all courses.
func (s *Service) Update(ctx context.Context, courseID, callerID string, upd Update) error {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.HostID != callerID {
		return ErrNotHost
	}
	if upd.JoinCode != nil {
		existing, err := s.repo.GetCourseByJoinCode(ctx, *upd.JoinCode)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != courseID {
			return ErrJoinCodeTaken
		}
	}
	return s.repo.UpdateCourse(ctx, courseID, upd)
}

// Delete removes a host's course and everything under it.
func (s *Service) Delete(ctx context.Context, courseID, callerID string) error {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.HostID != callerID {
		return ErrNotHost
	}
	return s.repo.DeleteCourse(ctx, courseID)
}

// Join enrolls the caller in the course holding the join code. Hosts cannot
// enroll in their own course.
func (s *Service) Join(ctx context.Context, callerID, joinCode string) (*Course, error) {
	c, err := s.repo.GetCourseByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.HostID == callerID {
		return nil, ErrHostEnroll
	}
	if err := s.repo.Enroll(ctx, callerID, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// Leave unenrolls the caller from a course.
func (s *Service) Leave(ctx context.Context, callerID, courseID string) error {
	return s.repo.Unenroll(ctx, callerID, courseID)
}

// Enrollments returns the caller's joined courses.
func (s *Service) Enrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	return s.repo.ListEnrollments(ctx, userID)
}

// Attendees returns a course roster to its host.
func (s *Service) Attendees(ctx context.Context, courseID, callerID string) (*Course, []Attendee, error) {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ErrNotFound
	}
	if c.HostID != callerID {
		return nil, nil, ErrNotHost
	}
	attendees, err := s.repo.ListAttendees(ctx, courseID)
	return c, attendees, err
}

// CreateSession schedules a session on a host's course. A supplied end time
// must not precede the start.
func (s *Service) CreateSession(ctx context.Context, courseID, callerID string, start int64, end *int64) (Session, error) {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Session{}, err
	}
	if c == nil {
		return Session{}, ErrNotFound
	}
	if c.HostID != callerID {
		return Session{}, ErrNotHost
	}
	if end != nil && *end < start {
		return Session{}, ErrBadTimeOrder
	}
	return s.repo.InsertSession(ctx, Session{CourseID: courseID, StartTime: start, EndTime: end})
}

// ListSessions returns a course's sessions to the host or an enrolled
// attendee.
func (s *Service) ListSessions(ctx context.Context, courseID, callerID string) ([]Session, error) {
	if err := s.requireHostOrEnrolled(ctx, courseID, callerID); err != nil {
		return nil, err
	}
	return s.repo.ListSessions(ctx, courseID)
}

// GetSession returns a session to the host or an enrolled attendee of its
// course.
func (s *Service) GetSession(ctx context.Context, sessionID, callerID string) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if err := s.requireHostOrEnrolled(ctx, sess.CourseID, callerID); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateSession applies host-only timing changes, re-validating order against
// the merged proposed times.
func (s *Service) UpdateSession(ctx context.Context, sessionID, callerID string, start, end *int64) error {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if err := s.requireHost(ctx, sess.CourseID, callerID); err != nil {
		return err
	}

	proposedStart := sess.StartTime
	if start != nil {
		proposedStart = *start
	}
	proposedEnd := sess.EndTime
	if end != nil {
		proposedEnd = end
	}
	if proposedEnd != nil && *proposedEnd < proposedStart {
		return ErrBadTimeOrder
	}
	return s.repo.UpdateSession(ctx, sessionID, start, end)
}

// DeleteSession removes a host's session and its attendance records.
func (s *Service) DeleteSession(ctx context.Context, sessionID, callerID string) error {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if err := s.requireHost(ctx, sess.CourseID, callerID); err != nil {
		return err
	}
	return s.repo.DeleteSession(ctx, sessionID)
}

func (s *Service) requireHost(ctx context.Context, courseID, callerID string) error {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.HostID != callerID {
		return ErrNotHost
	}
	return nil
}

func (s *Service) requireHostOrEnrolled(ctx context.Context, courseID, callerID string) error {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.HostID == callerID {
		return nil
	}
	enrolled, err := s.repo.IsEnrolled(ctx, callerID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrForbidden
	}
	return nil
}
