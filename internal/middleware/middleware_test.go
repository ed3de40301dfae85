package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/timer/internal/service"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, Subject(c))
	})
	return engine
}

func do(engine http.Handler, method, origin, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	engine := newEngine(CORS([]string{"http://localhost:5173"}))

	recorder := do(engine, http.MethodGet, "http://evil.test", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	engine := newEngine(CORS([]string{"*"}))

	recorder := do(engine, http.MethodGet, "http://any.test", "")

	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthOpenWithoutSecret(t *testing.T) {
	engine := newEngine(Auth(service.NewTokenService("", time.Hour)))

	assert.Equal(t, http.StatusOK, do(engine, http.MethodGet, "", "").Code)
}

func TestAuthWithSecret(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	engine := newEngine(Auth(tokens))

	assert.Equal(t, http.StatusUnauthorized, do(engine, http.MethodGet, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(engine, http.MethodGet, "", "garbage").Code)

	signed, err := tokens.Issue("phone")
	require.NoError(t, err)
	recorder := do(engine, http.MethodGet, "", signed)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "phone", recorder.Body.String())
}
