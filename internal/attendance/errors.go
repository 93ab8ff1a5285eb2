package attendance

import "errors"

// Typed outcomes surfaced to the handler layer. Storage failures are returned
// as-is (wrapped) and map to a generic 500 at the boundary.
var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("access denied")
	ErrNotEnrolled         = errors.New("you are not enrolled in this course")
	ErrNotHost             = errors.New("only the course host can perform this action")
	ErrHostSelfMark        = errors.New("hosts cannot mark attendance for their own sessions")
	ErrWindowClosed        = errors.New("attendance cannot be marked: session is not active or has ended")
	ErrWindowStillOpen     = errors.New("cannot mark absent: session attendance window is still open or has not started")
	ErrGeolocationRequired = errors.New("geolocation is required for this session")
	ErrOutOfRange          = errors.New("you are not within the required proximity to mark attendance")
	ErrAlreadyMarked       = errors.New("attendance already marked for this session")

	// ErrDuplicate is the storage-level uniqueness-violation signal for
	// (session_id, user_id). The insert, not the pre-check, is the conflict
	// authority under concurrency.
	ErrDuplicate = errors.New("duplicate attendance record")
)
