package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth parses the bearer token and stores the caller's Identity in the
// request context. Requests without a valid token are rejected.
func RequireAuth(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access denied. No token provided.",
			})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		identity, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token.",
			})
			return
		}

		c.Set(identityKey, *identity)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token is not an admin token. Must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin privileges required",
			})
			return
		}
		c.Next()
	}
}

// RequireStudent rejects callers whose token is not a student token. Used on
// routes where the acting student id is taken from the token itself. Must run
// after RequireAuth.
func RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || identity.UserType != UserTypeStudent {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Student account required",
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the Identity stored by RequireAuth.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}
