package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "presence-test"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("admin-1", RoleAdmin, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseRejects(t *testing.T) {
	pair, err := Issue("admin-1", RoleAdmin, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-key", testIssuer)
	assert.Error(t, err)

	_, err = Parse(pair.AccessToken, testKey, "someone-else")
	assert.Error(t, err)

	expired, err := Issue("admin-1", RoleAdmin, testIssuer, testKey, -time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = Parse(expired.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", AdminAuth(testKey, testIssuer), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Subject)
	})

	admin, err := Issue("admin-1", RoleAdmin, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	user, err := Issue("user-1", "user", testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer not-a-token", http.StatusUnauthorized},
		{"Bearer " + user.AccessToken, http.StatusForbidden},
		{"Bearer " + admin.AccessToken, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.header)
	}
}

func TestAdminAuthWSAcceptsQueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", AdminAuthWS(testKey, testIssuer), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/plain", AdminAuth(testKey, testIssuer), func(c *gin.Context) { c.Status(http.StatusOK) })

	admin, err := Issue("admin-1", RoleAdmin, testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	user, err := Issue("user-1", "user", testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		path   string
		status int
	}{
		{"/ws", http.StatusUnauthorized},
		{"/ws?token=", http.StatusUnauthorized},
		{"/ws?token=garbage", http.StatusUnauthorized},
		{"/ws?token=" + user.AccessToken, http.StatusForbidden},
		{"/ws?token=" + admin.AccessToken, http.StatusOK},
		{"/plain?token=" + admin.AccessToken, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}
