// README: Tests for Firebase auth middleware.
package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/http/middleware"
	"fleet/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func newTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": middleware.CallerUID(c), "role": middleware.CallerRole(c)})
	})
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejections(t *testing.T) {
	valid := &stubVerifier{token: &infra.FirebaseToken{UID: "user1"}}
	cases := []struct {
		name     string
		verifier infra.TokenVerifier
		header   string
	}{
		{"missing header", valid, ""},
		{"wrong prefix", valid, "Token sometoken"},
		{"empty token", valid, "Bearer   "},
		{"verifier error", &stubVerifier{err: errors.New("bad token")}, "Bearer invalidtoken"},
		{"empty uid", &stubVerifier{token: &infra.FirebaseToken{}}, "Bearer validtoken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(newTestRouter(tc.verifier), tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuth_ValidToken_UIDAndRolePopulated(t *testing.T) {
	token := &infra.FirebaseToken{
		UID:    "driver123",
		Claims: map[string]interface{}{"role": "driver"},
	}
	w := get(newTestRouter(&stubVerifier{token: token}), "Bearer validtoken")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "driver123", body["uid"])
	assert.Equal(t, "driver", body["role"])
}

func TestAuth_ValidToken_NoRoleClaim(t *testing.T) {
	token := &infra.FirebaseToken{UID: "user456", Claims: map[string]interface{}{"role": 7}}
	w := get(newTestRouter(&stubVerifier{token: token}), "Bearer validtoken")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user456", body["uid"])
	assert.Empty(t, body["role"])
}
