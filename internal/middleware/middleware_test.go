package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			httputil.RespondWithError(c, errors.New(errors.KindTooLarge, err.Error(), err))
			return
		}
		c.JSON(http.StatusOK, body)
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = do(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "has space")
	w = do(r, req)
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestProcessTime(t *testing.T) {
	r := newEngine(ProcessTime())

	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	v, err := strconv.ParseFloat(w.Header().Get(HeaderProcessTime), 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)
}

func TestLogger_AttachesRequestLogger(t *testing.T) {
	var buf strings.Builder
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), Logger(base))
	r.GET("/ctx", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(HeaderXRequestID, "rid-1")
	do(r, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "rid-1", entry["request_id"])
	}
	assert.Contains(t, lines[1], `"status":204`)
}

type fakeVerifier struct {
	users map[string]*model.User
}

func (f fakeVerifier) VerifyToken(_ context.Context, token string) (*model.User, error) {
	if token == "inactive" {
		return nil, errors.Forbidden("inactive user")
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.Unauthorized("", nil)
}

func TestAuthMiddleware(t *testing.T) {
	alice := &model.User{Base: model.Base{ID: 1}, Email: "alice@example.com"}
	m := NewAuthMiddleware(fakeVerifier{users: map[string]*model.User{"good": alice}})

	handler := func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, u.Email)
	}
	r := gin.New()
	r.GET("/required", m.Authenticate(), handler)
	r.GET("/optional", m.Optional(), handler)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "required without header", path: "/required", wantStatus: http.StatusUnauthorized},
		{name: "required bad scheme", path: "/required", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "required bad token", path: "/required", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "required inactive", path: "/required", header: "Bearer inactive", wantStatus: http.StatusForbidden},
		{name: "required good", path: "/required", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "alice@example.com"},
		{name: "optional anonymous", path: "/optional", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "optional good", path: "/optional", header: "bearer good", wantStatus: http.StatusOK, wantBody: "alice@example.com"},
		{name: "optional bad token", path: "/optional", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := do(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := newEngine(rl.RateLimit())

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		return req
	}

	assert.Equal(t, http.StatusOK, do(r, newReq("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(r, newReq("10.0.0.1")).Code)
	w := do(r, newReq("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(r, newReq("10.0.0.2")).Code, "limits are per client")
}

func TestSizeLimit(t *testing.T) {
	r := newEngine(SizeLimit(SizeLimitConfig{MaxBodySize: 32, MaxHeaderSize: 1 << 10}))

	w := do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Big", strings.Repeat("y", 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, req).Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS(DefaultCORSConfig([]string{"http://localhost:3000"})))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := do(r, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
	assert.NotContains(t, w.Body.String(), "goroutine")
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/err", func(c *gin.Context) {
		_ = c.Error(errors.NotFound("user", stderrors.New("missing")))
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/err", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user not found", resp.Message)
	assert.Equal(t, "/err", resp.Path)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Second}))
	r.GET("/deadline", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.String(http.StatusOK, strconv.FormatBool(ok))
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, "true", w.Body.String())
}

func TestSecurityHeadersAndNoStore(t *testing.T) {
	r := newEngine(SecurityHeaders(DefaultSecurityConfig()), NoStore())

	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "same-origin", w.Header().Get("Cross-Origin-Resource-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
