package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"courseattend/internal/attendance"
	"courseattend/internal/course"
	"courseattend/internal/user"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"session missing", attendance.ErrNotFound, http.StatusNotFound},
		{"course missing", course.ErrNotFound, http.StatusNotFound},
		{"bad credentials", user.ErrBadCredentials, http.StatusUnauthorized},
		{"not enrolled", attendance.ErrNotEnrolled, http.StatusForbidden},
		{"not host", attendance.ErrNotHost, http.StatusForbidden},
		{"host self-mark", attendance.ErrHostSelfMark, http.StatusBadRequest},
		{"window closed", attendance.ErrWindowClosed, http.StatusBadRequest},
		{"window still open", attendance.ErrWindowStillOpen, http.StatusBadRequest},
		{"geolocation required", attendance.ErrGeolocationRequired, http.StatusBadRequest},
		{"out of range", attendance.ErrOutOfRange, http.StatusBadRequest},
		{"already marked", attendance.ErrAlreadyMarked, http.StatusConflict},
		{"email taken", user.ErrEmailTaken, http.StatusConflict},
		{"join code taken", course.ErrJoinCodeTaken, http.StatusConflict},
		{"host enroll", course.ErrHostEnroll, http.StatusBadRequest},
		{"storage failure stays generic", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "internal error")
}
