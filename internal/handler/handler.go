package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courseattend/internal/attendance"
	"courseattend/internal/course"
	"courseattend/internal/user"
)

// TokenConfig is what the handler needs to issue JWTs.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler binds HTTP requests to the domain services.
type Handler struct {
	users      *user.Service
	courses    *course.Service
	attendance *attendance.Service
	tokens     TokenConfig
}

// New creates a handler over the domain services.
func New(users *user.Service, courses *course.Service, att *attendance.Service, tokens TokenConfig) *Handler {
	return &Handler{users: users, courses: courses, attendance: att, tokens: tokens}
}

// respondError maps domain sentinel errors to HTTP statuses. Anything
// unrecognized is a storage-level failure and surfaces as a plain 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, course.ErrNotFound),
		errors.Is(err, course.ErrNotEnrolled),
		errors.Is(err, attendance.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, user.ErrBadCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, course.ErrForbidden),
		errors.Is(err, course.ErrNotHost),
		errors.Is(err, attendance.ErrForbidden),
		errors.Is(err, attendance.ErrNotEnrolled),
		errors.Is(err, attendance.ErrNotHost):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, course.ErrJoinCodeTaken),
		errors.Is(err, course.ErrAlreadyEnrolled),
		errors.Is(err, attendance.ErrAlreadyMarked):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, course.ErrHostEnroll),
		errors.Is(err, course.ErrBadTimeOrder),
		errors.Is(err, attendance.ErrHostSelfMark),
		errors.Is(err, attendance.ErrWindowClosed),
		errors.Is(err, attendance.ErrWindowStillOpen),
		errors.Is(err, attendance.ErrGeolocationRequired),
		errors.Is(err, attendance.ErrOutOfRange):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		log.Printf("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
