package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farellandr/eventhub/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T, now func() time.Time) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour, auth.WithClock(now))
	require.NoError(t, err)
	return tokens
}

func newRouter(tokens *auth.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(tokens), Authorize(auth.DefaultPolicy("/api/v1")))
	whoami := func(c *gin.Context) {
		id := GetIdentity(c)
		fromCtx := auth.IdentityFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subject": id.Subject, "context_subject": fromCtx.Subject})
	}
	r.GET("/api/v1/authenticated", whoami)
	r.GET("/api/v1/events", whoami)
	r.POST("/api/v1/authenticate", whoami)
	return r
}

func serve(r http.Handler, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	tokens := newTokens(t, time.Now)
	token, _, err := tokens.Issue("alice", []string{"ROLE_ORGANIZER"})
	require.NoError(t, err)

	rec := serve(newRouter(tokens), http.MethodGet, "/api/v1/events", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"subject":"alice","context_subject":"alice"}`, rec.Body.String())
}

func TestAuthenticateRejections(t *testing.T) {
	tokens := newTokens(t, time.Now)
	stale := newTokens(t, func() time.Time { return time.Now().Add(-3 * time.Hour) })
	expired, _, err := stale.Issue("alice", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantMessage   string
	}{
		{"wrong scheme", "Token abc", "Invalid authorization header."},
		{"empty bearer", "Bearer ", "Invalid authorization header."},
		{"garbage token", "Bearer not.a.jwt", "Invalid token."},
		{"expired token", "Bearer " + expired, "Token expired."},
	}
	r := newRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, http.MethodGet, "/api/v1/authenticated", tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestAuthorize(t *testing.T) {
	tokens := newTokens(t, time.Now)
	participant, _, err := tokens.Issue("pat", []string{"ROLE_PARTICIPANT"})
	require.NoError(t, err)
	r := newRouter(tokens)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/authenticate", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/authenticated", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/authenticated", "Bearer "+participant).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/events", "Bearer "+participant).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/other", "Bearer "+participant).Code)
}
