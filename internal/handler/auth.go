package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courseattend/internal/auth"
	"courseattend/internal/user"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Signup registers an account and issues tokens for it.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, and password are required"})
		return
	}
	u, err := h.users.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	tokens, err := h.issueTokens(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signin verifies credentials and issues tokens.
func (h *Handler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	u, err := h.users.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	tokens, err := h.issueTokens(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// AuthStatus reports the caller's identity from the bearer token.
func (h *Handler) AuthStatus(c *gin.Context) {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"isLoggedIn": true,
		"user": gin.H{
			"id":    claims.Subject,
			"name":  claims.Name,
			"email": claims.Email,
		},
	})
}

func (h *Handler) issueTokens(u user.User) (auth.TokenPair, error) {
	return auth.Issue(u.ID, u.Name, u.Email, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.AccessTTL, h.tokens.RefreshTTL)
}
