package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT(t *testing.T) *security.JWTManager {
	t.Helper()
	jm, err := security.NewJWTManager(&security.JWTConfig{SecretKey: "mw-secret"})
	require.NoError(t, err)
	return jm
}

func bearer(t *testing.T, jm *security.JWTManager, caller security.Caller) string {
	t.Helper()
	token, err := jm.GenerateToken(&security.Claims{Payload: caller.Payload()})
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuth(t *testing.T) {
	jm := newJWT(t)
	r := gin.New()
	r.Use(Auth(jm))
	r.GET("/me", func(c *gin.Context) {
		caller, ok := GetCaller(c)
		require.True(t, ok)
		fromCtx, ok := security.CallerFrom(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, caller, fromCtx)
		c.String(http.StatusOK, "%d", caller.UserID)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, errors.CodeUnAuthorized, decodeCode(t, w))
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer junk")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, jm, security.Caller{UserID: 99, GuildID: 5}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "99", w.Body.String())
	})
}

func TestRateLimit_PerCaller(t *testing.T) {
	jm := newJWT(t)
	rl, err := NewRateLimiter(logger.NewNoop(), &RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, MaxLimiters: 16})
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth(jm), RateLimit(rl))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(uid uint64) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", bearer(t, jm, security.Caller{UserID: uid}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(1))
	assert.Equal(t, http.StatusNoContent, do(1))
	assert.Equal(t, http.StatusTooManyRequests, do(1))
	// 其他用户不受影响
	assert.Equal(t, http.StatusNoContent, do(2))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFrom(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "gw-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "gw-123", w.Body.String())
	assert.Equal(t, "gw-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNoop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.CodeInternalError, decodeCode(t, w))
}
