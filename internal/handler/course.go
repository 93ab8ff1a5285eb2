package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courseattend/internal/auth"
	"courseattend/internal/course"
)

type createCourseRequest struct {
	Name                    string   `json:"name" binding:"required"`
	JoinCode                string   `json:"join_code" binding:"required"`
	GeoLat                  *float64 `json:"geolocation_latitude"`
	GeoLon                  *float64 `json:"geolocation_longitude"`
	LateThresholdMinutes    *int     `json:"late_threshold_minutes"`
	PresentThresholdMinutes *int     `json:"present_threshold_minutes"`
}

// CreateCourse registers a course hosted by the caller.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course name and join code are required"})
		return
	}
	crs := course.Course{
		HostID:                  auth.CallerID(c),
		Name:                    req.Name,
		JoinCode:                req.JoinCode,
		GeoLat:                  req.GeoLat,
		GeoLon:                  req.GeoLon,
		LateThresholdMinutes:    10,
		PresentThresholdMinutes: 0,
	}
	if req.LateThresholdMinutes != nil {
		crs.LateThresholdMinutes = *req.LateThresholdMinutes
	}
	if req.PresentThresholdMinutes != nil {
		crs.PresentThresholdMinutes = *req.PresentThresholdMinutes
	}
	created, err := h.courses.Create(c.Request.Context(), crs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCourses returns courses the caller hosts or attends.
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.courses.ListForUser(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetCourse returns one course to its host or an enrolled attendee.
func (h *Handler) GetCourse(c *gin.Context) {
	crs, err := h.courses.Get(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crs)
}

type updateCourseRequest struct {
	Name                    *string  `json:"name"`
	JoinCode                *string  `json:"join_code"`
	GeoLat                  *float64 `json:"geolocation_latitude"`
	GeoLon                  *float64 `json:"geolocation_longitude"`
	LateThresholdMinutes    *int     `json:"late_threshold_minutes"`
	PresentThresholdMinutes *int     `json:"present_threshold_minutes"`
}

// UpdateCourse applies host-only changes.
func (h *Handler) UpdateCourse(c *gin.Context) {
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.courses.Update(c.Request.Context(), c.Param("id"), auth.CallerID(c), course.Update{
		Name:                    req.Name,
		JoinCode:                req.JoinCode,
		GeoLat:                  req.GeoLat,
		GeoLon:                  req.GeoLon,
		LateThresholdMinutes:    req.LateThresholdMinutes,
		PresentThresholdMinutes: req.PresentThresholdMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course updated successfully"})
}

// DeleteCourse removes a host's course.
func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id"), auth.CallerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted successfully"})
}

type enrollRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

// Enroll joins the caller to the course holding the join code.
func (h *Handler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "join code is required to enroll in a course"})
		return
	}
	crs, err := h.courses.Join(c.Request.Context(), auth.CallerID(c), req.JoinCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "successfully enrolled in course '" + crs.Name + "'",
		"course_id": crs.ID,
		"user_id":   auth.CallerID(c),
	})
}

type unenrollRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

// Unenroll removes the caller's enrollment.
func (h *Handler) Unenroll(c *gin.Context) {
	var req unenrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course id is required to unenroll"})
		return
	}
	if err := h.courses.Leave(c.Request.Context(), auth.CallerID(c), req.CourseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully unenrolled from course"})
}

// ListUserEnrollments returns the caller's own enrollments.
func (h *Handler) ListUserEnrollments(c *gin.Context) {
	id := c.Param("id")
	if auth.CallerID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own enrollments"})
		return
	}
	enrollments, err := h.courses.Enrollments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

// ListCourseAttendees returns the roster to the course host.
func (h *Handler) ListCourseAttendees(c *gin.Context) {
	crs, attendees, err := h.courses.Attendees(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course_id":   crs.ID,
		"course_name": crs.Name,
		"attendees":   attendees,
	})
}
