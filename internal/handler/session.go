package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courseattend/internal/auth"
)

type createSessionRequest struct {
	StartTime *int64 `json:"start_time" binding:"required"`
	EndTime   *int64 `json:"end_time"`
}

// CreateSession schedules a session on the caller's course.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session start time is required"})
		return
	}
	sess, err := h.courses.CreateSession(c.Request.Context(), c.Param("id"), auth.CallerID(c), *req.StartTime, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// ListCourseSessions returns a course's sessions, newest first.
func (h *Handler) ListCourseSessions(c *gin.Context) {
	sessions, err := h.courses.ListSessions(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns one session to the host or an enrolled attendee.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.courses.GetSession(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type updateSessionRequest struct {
	StartTime *int64 `json:"start_time"`
	EndTime   *int64 `json:"end_time"`
}

// UpdateSession applies host-only timing changes.
func (h *Handler) UpdateSession(c *gin.Context) {
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.courses.UpdateSession(c.Request.Context(), c.Param("id"), auth.CallerID(c), req.StartTime, req.EndTime); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session updated successfully"})
}

// DeleteSession removes a host's session.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.courses.DeleteSession(c.Request.Context(), c.Param("id"), auth.CallerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted successfully"})
}
