package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"courseattend/internal/auth"
)

type markAttendanceRequest struct {
	UserLat     *float64 `json:"user_geolocation_latitude"`
	UserLon     *float64 `json:"user_geolocation_longitude"`
	ProofBase64 string   `json:"proof_base64"`
}

// MarkAttendance records the caller's presence for a session.
func (h *Handler) MarkAttendance(c *gin.Context) {
	// Body is optional: coordinates and proof only matter for geofenced courses.
	var req markAttendanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	var proof []byte
	if req.ProofBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ProofBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proof payload"})
			return
		}
		proof = decoded
	}
	rec, err := h.attendance.Mark(c.Request.Context(), c.Param("id"), auth.CallerID(c), req.UserLat, req.UserLon, proof)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "attendance marked successfully as " + string(rec.Status),
		"attendance_id": rec.ID,
		"session_id":    rec.SessionID,
		"user_id":       rec.UserID,
		"status":        rec.Status,
		"joined_at":     rec.JoinedAt,
	})
}

// MarkAbsentForUnattended backfills Absent records for a closed session.
func (h *Handler) MarkAbsentForUnattended(c *gin.Context) {
	marked, rowErrs, err := h.attendance.ReconcileAbsent(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if rowErrs == nil {
		rowErrs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"marked_absent_count": marked,
		"errors":              rowErrs,
	})
}

// GetAttendance returns a record to its owner or the course host.
func (h *Handler) GetAttendance(c *gin.Context) {
	rec, err := h.attendance.Get(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListUserAttendances returns the caller's own history.
func (h *Handler) ListUserAttendances(c *gin.Context) {
	id := c.Param("id")
	if auth.CallerID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own attendance records"})
		return
	}
	records, err := h.attendance.ListForUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendances": records})
}

// ListSessionAttendances returns a session's roster to the course host.
func (h *Handler) ListSessionAttendances(c *gin.Context) {
	sess, records, err := h.attendance.ListForSession(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":         sess.ID,
		"course_id":          sess.CourseID,
		"session_start_time": sess.StartTime,
		"session_end_time":   sess.EndTime,
		"attendances":        records,
	})
}

// CourseAttendanceSummary returns per-attendee counts for the host, or the
// caller's own counts for an enrolled attendee.
func (h *Handler) CourseAttendanceSummary(c *gin.Context) {
	summaries, err := h.attendance.CourseSummary(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course_id": c.Param("id"),
		"summary":   summaries,
	})
}
