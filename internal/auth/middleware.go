package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// UserAuth enforces bearer JWT tokens signed with HS256.
func UserAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized, please log in"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalUserAuth stores claims for a valid bearer token but never rejects.
func OptionalUserAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			tokenStr := strings.TrimSpace(authz[len("bearer "):])
			if claims, err := Parse(tokenStr, signingKey, issuer); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// CallerClaims returns the claims stored by UserAuth, if any.
func CallerClaims(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// CallerID returns the authenticated user id, or empty string.
func CallerID(c *gin.Context) string {
	claims, ok := CallerClaims(c)
	if !ok {
		return ""
	}
	return claims.Subject
}
