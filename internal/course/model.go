package course

import "errors"

var (
	ErrNotFound        = errors.New("course not found")
	ErrForbidden       = errors.New("access denied")
	ErrNotHost         = errors.New("you are not the host of this course")
	ErrJoinCodeTaken   = errors.New("join code already in use by another course")
	ErrHostEnroll      = errors.New("you are the host of this course; you cannot enroll as an attendee")
	ErrAlreadyEnrolled = errors.New("you are already enrolled in this course")
	ErrNotEnrolled     = errors.New("you are not enrolled in this course")
	ErrBadTimeOrder    = errors.New("end time cannot be before start time")
)

// Course is owned by its host. Thresholds are minutes of grace for the
// attendance window.
type Course struct {
	ID                      string   `json:"id"`
	HostID                  string   `json:"host_id"`
	Name                    string   `json:"name"`
	JoinCode                string   `json:"join_code"`
	GeoLat                  *float64 `json:"geolocation_latitude,omitempty"`
	GeoLon                  *float64 `json:"geolocation_longitude,omitempty"`
	LateThresholdMinutes    int      `json:"late_threshold_minutes"`
	PresentThresholdMinutes int      `json:"present_threshold_minutes"`
	CreatedAt               int64    `json:"created_at"`
	HostName                string   `json:"host_name,omitempty"`
}

// Update carries optional course changes; nil fields are left untouched.
type Update struct {
	Name                    *string
	JoinCode                *string
	GeoLat                  *float64
	GeoLon                  *float64
	LateThresholdMinutes    *int
	PresentThresholdMinutes *int
}

// Session is a timed occurrence of a course. EndTime is optional.
type Session struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
}

// Enrollment links an attendee to a course they joined.
type Enrollment struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"name"`
	JoinCode   string `json:"join_code"`
	HostID     string `json:"host_id"`
	HostName   string `json:"host_name"`
	EnrolledAt int64  `json:"enrolled_at"`
}

// Attendee is a roster entry for the course host.
type Attendee struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EnrolledAt int64  `json:"enrolled_at"`
}
