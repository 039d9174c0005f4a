package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// TokenQueryParam carries the access token on websocket upgrades, where
// browsers cannot set an Authorization header.
const TokenQueryParam = "token"

// AdminAuth enforces bearer JWT tokens signed with HS256 and carrying the
// admin role.
func AdminAuth(signingKey, issuer string) gin.HandlerFunc {
	return adminAuth(signingKey, issuer, false)
}

// AdminAuthWS is AdminAuth that also accepts the token from the
// TokenQueryParam query parameter.
func AdminAuthWS(signingKey, issuer string) gin.HandlerFunc {
	return adminAuth(signingKey, issuer, true)
}

func adminAuth(signingKey, issuer string, fromQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok && fromQuery {
			tokenStr = c.Query(TokenQueryParam)
			ok = tokenStr != ""
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "Unauthorized"})
			return
		}
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "Unauthorized"})
			return
		}
		if claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required", "code": "Forbidden"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}

// ClaimsFrom returns the claims stored by AdminAuth.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
