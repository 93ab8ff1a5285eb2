package attendance

// Attendance is one recorded presence for a (session, user) pair. Records are
// immutable once created.
type Attendance struct {
	ID        string   `json:"id"`
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Status    Status   `json:"status"`
	JoinedAt  int64    `json:"joined_at"`
	UserLat   *float64 `json:"user_geolocation_latitude,omitempty"`
	UserLon   *float64 `json:"user_geolocation_longitude,omitempty"`
	Proof     []byte   `json:"-"`
}

// Session is the timing view of a course session used for evaluation.
type Session struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
}

// CourseConfig is the slice of course state the evaluator and geofence need.
type CourseConfig struct {
	HostID                  string
	GeoLat                  *float64
	GeoLon                  *float64
	PresentThresholdMinutes int
	LateThresholdMinutes    int
}

// UserRef identifies an enrolled user in reconciliation reports.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// UserAttendance is an attendance record with its session and course context.
type UserAttendance struct {
	Attendance
	SessionStartTime int64  `json:"session_start_time"`
	SessionEndTime   *int64 `json:"session_end_time,omitempty"`
	CourseID         string `json:"course_id"`
	CourseName       string `json:"course_name"`
}

// SessionAttendance is an attendance record with attendee identity.
type SessionAttendance struct {
	Attendance
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// UserSummary aggregates one user's attendance over a course.
type UserSummary struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PresentCount  int    `json:"present_count"`
	LateCount     int    `json:"late_count"`
	AbsentCount   int    `json:"absent_count"`
	TotalSessions int    `json:"total_sessions"`
}
