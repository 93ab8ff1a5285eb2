package attendance

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for orchestration tests. The composite
// (session, user) key enforces the same uniqueness the database does.
type fakeStore struct {
	sessions    map[string]Session
	configs     map[string]CourseConfig
	enrollments map[string][]string // courseID -> userIDs
	users       map[string]UserRef
	records     map[string]Attendance // sessionID|userID
	failInsert  map[string]error      // userID -> forced insert error
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:    make(map[string]Session),
		configs:     make(map[string]CourseConfig),
		enrollments: make(map[string][]string),
		users:       make(map[string]UserRef),
		records:     make(map[string]Attendance),
		failInsert:  make(map[string]error),
	}
}

func recKey(sessionID, userID string) string { return sessionID + "|" + userID }

func (f *fakeStore) GetSession(_ context.Context, id string) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) GetCourseConfig(_ context.Context, courseID string) (*CourseConfig, error) {
	c, ok := f.configs[courseID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	for _, id := range f.enrollments[courseID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasAttendance(_ context.Context, sessionID, userID string) (bool, error) {
	_, ok := f.records[recKey(sessionID, userID)]
	return ok, nil
}

func (f *fakeStore) InsertAttendance(_ context.Context, rec Attendance) (Attendance, error) {
	if err := f.failInsert[rec.UserID]; err != nil {
		return Attendance{}, err
	}
	key := recKey(rec.SessionID, rec.UserID)
	if _, ok := f.records[key]; ok {
		return Attendance{}, fmt.Errorf("insert: %w", ErrDuplicate)
	}
	f.nextID++
	rec.ID = fmt.Sprintf("att-%d", f.nextID)
	f.records[key] = rec
	return rec, nil
}

func (f *fakeStore) GetAttendance(_ context.Context, id string) (*Attendance, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListUnrecorded(_ context.Context, courseID, sessionID string) ([]UserRef, error) {
	var res []UserRef
	for _, id := range f.enrollments[courseID] {
		if _, ok := f.records[recKey(sessionID, id)]; !ok {
			res = append(res, f.users[id])
		}
	}
	return res, nil
}

func (f *fakeStore) ListForUser(_ context.Context, userID string) ([]UserAttendance, error) {
	return nil, nil
}

func (f *fakeStore) ListForSession(_ context.Context, sessionID string) ([]SessionAttendance, error) {
	var res []SessionAttendance
	for _, rec := range f.records {
		if rec.SessionID == sessionID {
			res = append(res, SessionAttendance{Attendance: rec})
		}
	}
	return res, nil
}

func (f *fakeStore) CourseSummary(_ context.Context, courseID string) ([]UserSummary, error) {
	return nil, nil
}

func (f *fakeStore) UserCourseSummary(_ context.Context, courseID, userID string) (*UserSummary, error) {
	return nil, nil
}

// fixture: course c1 hosted by host, session s1 1000..1600 with 5/10 minute
// thresholds, attendees u1 and u2 enrolled.
func newFixture() (*fakeStore, *Service) {
	fs := newFakeStore()
	end := int64(1600)
	fs.sessions["s1"] = Session{ID: "s1", CourseID: "c1", StartTime: 1000, EndTime: &end}
	fs.configs["c1"] = CourseConfig{HostID: "host", PresentThresholdMinutes: 5, LateThresholdMinutes: 10}
	fs.enrollments["c1"] = []string{"u1", "u2"}
	fs.users["u1"] = UserRef{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	fs.users["u2"] = UserRef{ID: "u2", Name: "Grace", Email: "grace@example.com"}

	svc := NewService(fs)
	return fs, svc
}

func atTime(svc *Service, now int64) { svc.now = func() int64 { return now } }

func TestServiceMark(t *testing.T) {
	ctx := context.Background()

	t.Run("present within grace", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1200)
		rec, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusPresent, rec.Status)
		assert.Equal(t, int64(1200), rec.JoinedAt)
	})

	t.Run("late after present cutoff", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1400)
		rec, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusLate, rec.Status)
	})

	t.Run("absent inside admission window past late cutoff", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1700)
		rec, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusAbsent, rec.Status)
	})

	t.Run("window closed", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 2300)
		_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "nope", "u1", nil, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "s1", "stranger", nil, nil, nil)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("host cannot self-mark", func(t *testing.T) {
		fs, svc := newFixture()
		fs.enrollments["c1"] = append(fs.enrollments["c1"], "host")
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "s1", "host", nil, nil, nil)
		assert.ErrorIs(t, err, ErrHostSelfMark)
	})

	t.Run("second mark conflicts", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		require.NoError(t, err)
		_, err = svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		assert.ErrorIs(t, err, ErrAlreadyMarked)
	})

	t.Run("insert race maps duplicate to conflict", func(t *testing.T) {
		fs, svc := newFixture()
		// Pre-check sees nothing, the insert itself collides.
		fs.failInsert["u1"] = fmt.Errorf("insert: %w", ErrDuplicate)
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		assert.ErrorIs(t, err, ErrAlreadyMarked)
	})
}

func TestServiceMarkGeofence(t *testing.T) {
	ctx := context.Background()
	withGeo := func() (*fakeStore, *Service) {
		fs, svc := newFixture()
		cfg := fs.configs["c1"]
		lat, lon := 0.0, 0.0
		cfg.GeoLat, cfg.GeoLon = &lat, &lon
		fs.configs["c1"] = cfg
		atTime(svc, 1200)
		return fs, svc
	}

	t.Run("coordinates required", func(t *testing.T) {
		_, svc := withGeo()
		_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		assert.ErrorIs(t, err, ErrGeolocationRequired)
	})

	t.Run("out of range", func(t *testing.T) {
		_, svc := withGeo()
		lat, lon := 0.0, 0.002
		_, err := svc.Mark(ctx, "s1", "u1", &lat, &lon, nil)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("in range stores coordinates", func(t *testing.T) {
		_, svc := withGeo()
		lat, lon := 0.0, 0.0005
		rec, err := svc.Mark(ctx, "s1", "u1", &lat, &lon, nil)
		require.NoError(t, err)
		require.NotNil(t, rec.UserLon)
		assert.Equal(t, 0.0005, *rec.UserLon)
	})
}

func TestServiceReconcileAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("host only", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 9000)
		_, _, err := svc.ReconcileAbsent(ctx, "s1", "u1")
		assert.ErrorIs(t, err, ErrNotHost)
	})

	t.Run("window still open", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 2200) // exactly the admission deadline: still open
		_, _, err := svc.ReconcileAbsent(ctx, "s1", "host")
		assert.ErrorIs(t, err, ErrWindowStillOpen)
	})

	t.Run("backfills every unrecorded attendee", func(t *testing.T) {
		fs, svc := newFixture()
		atTime(svc, 1200)
		_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
		require.NoError(t, err)

		atTime(svc, 2201)
		marked, rowErrs, err := svc.ReconcileAbsent(ctx, "s1", "host")
		require.NoError(t, err)
		assert.Equal(t, 1, marked)
		assert.Empty(t, rowErrs)

		rec := fs.records[recKey("s1", "u2")]
		assert.Equal(t, StatusAbsent, rec.Status)
		assert.Equal(t, int64(2201), rec.JoinedAt)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		_, svc := newFixture()
		atTime(svc, 2201)
		marked, _, err := svc.ReconcileAbsent(ctx, "s1", "host")
		require.NoError(t, err)
		assert.Equal(t, 2, marked)

		marked, rowErrs, err := svc.ReconcileAbsent(ctx, "s1", "host")
		require.NoError(t, err)
		assert.Equal(t, 0, marked)
		assert.Empty(t, rowErrs)
	})

	t.Run("row failures reported not escalated", func(t *testing.T) {
		fs, svc := newFixture()
		fs.failInsert["u1"] = fmt.Errorf("insert: %w", ErrDuplicate)
		atTime(svc, 2201)
		marked, rowErrs, err := svc.ReconcileAbsent(ctx, "s1", "host")
		require.NoError(t, err)
		assert.Equal(t, 1, marked)
		require.Len(t, rowErrs, 1)
		assert.Contains(t, rowErrs[0], "ada@example.com")
	})
}

func TestServiceGet(t *testing.T) {
	ctx := context.Background()
	fs, svc := newFixture()
	atTime(svc, 1200)
	rec, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
	require.NoError(t, err)

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.Get(ctx, rec.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
	})

	t.Run("host can read", func(t *testing.T) {
		_, err := svc.Get(ctx, rec.ID, "host")
		require.NoError(t, err)
	})

	t.Run("other attendee cannot", func(t *testing.T) {
		_, err := svc.Get(ctx, rec.ID, "u2")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing", "u1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	_ = fs
}

func TestServiceListForSession(t *testing.T) {
	ctx := context.Background()
	_, svc := newFixture()
	atTime(svc, 1200)
	_, err := svc.Mark(ctx, "s1", "u1", nil, nil, nil)
	require.NoError(t, err)

	t.Run("host sees roster", func(t *testing.T) {
		sess, recs, err := svc.ListForSession(ctx, "s1", "host")
		require.NoError(t, err)
		assert.Equal(t, "s1", sess.ID)
		assert.Len(t, recs, 1)
	})

	t.Run("attendee denied", func(t *testing.T) {
		_, _, err := svc.ListForSession(ctx, "s1", "u1")
		assert.ErrorIs(t, err, ErrNotHost)
	})
}
