package attendance

import (
	"errors"
	"testing"
)

func int64p(v int64) *int64 { return &v }

func TestEvaluateMark(t *testing.T) {
	// Session 1000..1600, present threshold 5 min, late threshold 10 min.
	start := int64(1000)
	end := int64p(1600)

	cases := []struct {
		name       string
		now        int64
		wantStatus Status
		wantClosed bool
	}{
		{"well before window", 600, "", true},
		{"just before window opens", 699, "", true},
		{"window opens with grace", 700, StatusPresent, false},
		{"present inside grace", 1200, StatusPresent, false},
		{"present boundary", 1300, StatusPresent, false},
		{"late after present cutoff", 1301, StatusLate, false},
		{"late inside window", 1400, StatusLate, false},
		{"late boundary", 1600, StatusLate, false},
		{"absent past late cutoff but admitted", 1700, StatusAbsent, false},
		{"admission deadline", 2200, StatusAbsent, false},
		{"past admission deadline", 2201, "", true},
		{"long after", 2300, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, err := EvaluateMark(start, end, 5, 10, tc.now)
			if tc.wantClosed {
				if !errors.Is(err, ErrWindowClosed) {
					t.Fatalf("EvaluateMark(now=%d) err = %v, want ErrWindowClosed", tc.now, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EvaluateMark(now=%d): %v", tc.now, err)
			}
			if status != tc.wantStatus {
				t.Errorf("EvaluateMark(now=%d) = %s, want %s", tc.now, status, tc.wantStatus)
			}
		})
	}
}

func TestEvaluateMarkZeroPresentThreshold(t *testing.T) {
	start := int64(5000)
	end := int64p(5600)

	status, err := EvaluateMark(start, end, 0, 10, start)
	if err != nil {
		t.Fatalf("at start: %v", err)
	}
	if status != StatusPresent {
		t.Errorf("at start = %s, want Present", status)
	}

	status, err = EvaluateMark(start, end, 0, 10, start+1)
	if err != nil {
		t.Fatalf("one second after start: %v", err)
	}
	if status != StatusLate {
		t.Errorf("one second after start = %s, want Late", status)
	}
}

func TestEvaluateMarkDefaultEnd(t *testing.T) {
	// No end time: end defaults to start + 3600 for window computations.
	start := int64(1000)

	if _, err := EvaluateMark(start, nil, 0, 0, start+3600); err != nil {
		t.Fatalf("at default end: %v", err)
	}
	if _, err := EvaluateMark(start, nil, 0, 0, start+3601); !errors.Is(err, ErrWindowClosed) {
		t.Fatalf("past default end err = %v, want ErrWindowClosed", err)
	}
}

func TestEvaluateMarkZeroLateThreshold(t *testing.T) {
	// A missing late threshold behaves as zero: the admission window ends at
	// the session end and nothing past the present cutoff can be Late.
	start := int64(1000)
	end := int64p(1600)

	status, err := EvaluateMark(start, end, 0, 0, 1200)
	if err != nil {
		t.Fatalf("inside session: %v", err)
	}
	if status != StatusAbsent {
		t.Errorf("inside session with zero thresholds = %s, want Absent", status)
	}
	if _, err := EvaluateMark(start, end, 0, 0, 1601); !errors.Is(err, ErrWindowClosed) {
		t.Fatalf("past end err = %v, want ErrWindowClosed", err)
	}
}

func TestAdmissionDeadline(t *testing.T) {
	if got := admissionDeadline(1000, int64p(1600), 10); got != 2200 {
		t.Errorf("admissionDeadline with end = %d, want 2200", got)
	}
	if got := admissionDeadline(1000, nil, 0); got != 4600 {
		t.Errorf("admissionDeadline default end = %d, want 4600", got)
	}
}
