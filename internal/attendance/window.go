package attendance

// Status of a recorded attendance.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
)

// Sessions without an explicit end time are treated as one hour long for
// window computations. The default is never persisted.
const defaultSessionSeconds = 3600

func effectiveEnd(startTime int64, endTime *int64) int64 {
	if endTime != nil {
		return *endTime
	}
	return startTime + defaultSessionSeconds
}

// admissionDeadline is the last instant at which a self-mark is accepted.
// Anchored to the session end, unlike the Present/Late split below.
func admissionDeadline(startTime int64, endTime *int64, lateThresholdMin int) int64 {
	return effectiveEnd(startTime, endTime) + int64(lateThresholdMin)*60
}

// EvaluateMark classifies a mark attempt at instant now (epoch seconds).
// The admission window is [start − present_threshold, end + late_threshold];
// outside it the attempt is rejected with ErrWindowClosed. Inside it, the
// Present and Late cutoffs both compare against the session start, so a mark
// can land inside the admission window yet past the late cutoff and be
// recorded Absent. Thresholds are minutes; a missing late threshold is zero.
func EvaluateMark(startTime int64, endTime *int64, presentThresholdMin, lateThresholdMin int, now int64) (Status, error) {
	presentSec := int64(presentThresholdMin) * 60
	lateSec := int64(lateThresholdMin) * 60

	if now < startTime-presentSec || now > admissionDeadline(startTime, endTime, lateThresholdMin) {
		return "", ErrWindowClosed
	}
	switch {
	case now <= startTime+presentSec:
		return StatusPresent, nil
	case now <= startTime+lateSec:
		return StatusLate, nil
	default:
		return StatusAbsent, nil
	}
}
