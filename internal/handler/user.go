package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courseattend/internal/auth"
	"courseattend/internal/user"
)

// GetUser returns the caller's own profile.
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if auth.CallerID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own profile"})
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// UpdateUser applies profile changes to the caller's own account.
func (h *Handler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if auth.CallerID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only update your own profile"})
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.users.UpdateProfile(c.Request.Context(), id, user.Update{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully"})
}

type deleteUserRequest struct {
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// DeleteUser removes the caller's own account after password confirmation.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if auth.CallerID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own profile"})
		return
	}
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password confirmation is required to delete account"})
		return
	}
	if err := h.users.DeleteAccount(c.Request.Context(), id, req.PasswordConfirmation); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
