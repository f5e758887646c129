package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]string

func (s stubAuth) Authenticate(token string) (string, error) {
	if token == "" {
		return "", utils.NewUnauthorizedError(utils.ErrUnauthorized)
	}
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", utils.NewUnauthorizedError("Invalid access token")
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequireAuth(stubAuth{"good": "u1"}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		status int
		body   string
	}{
		{"bearer header", "Bearer good", "", http.StatusOK, "u1"},
		{"lowercase scheme", "bearer good", "", http.StatusOK, "u1"},
		{"cookie", "", "good", http.StatusOK, "u1"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"bad token", "Bearer bad", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			authRouter().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(requestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/boom", func(c *gin.Context) {
		utils.HandleError(c, errors.New("disk on fire"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "request_id=rid-1")
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "disk on fire")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/trips/:tripId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/trips/a", "/trips/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/trips/:tripId", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors register once per registry")
}
