package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate resolves the bearer token, if any, into the request
// identity. Requests without a token continue as anonymous; a token that
// fails validation ends the request with 401.
func Authenticate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header.")
			return
		}

		id, err := tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.Header("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
				helpers.RespondWithError(c, http.StatusUnauthorized, "Token expired.")
				return
			}
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// Authorize enforces the route policy before any handler runs.
func Authorize(policy *auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		switch policy.Decide(c.Request.Method, c.Request.URL.Path, id) {
		case auth.Allow:
			c.Next()
		case auth.DenyUnauthenticated:
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication required.")
		default:
			helpers.RespondWithError(c, http.StatusForbidden, "Access denied.")
		}
	}
}

// GetIdentity returns the anonymous identity when the gate set none.
func GetIdentity(c *gin.Context) auth.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}
	}
	id, _ := value.(auth.Identity)
	return id
}
