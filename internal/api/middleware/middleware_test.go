package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			requestID := c.GetString("request_id")
			c.String(http.StatusOK, requestID)
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Body.String(), 36)
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			requestID := c.GetString("request_id")
			c.String(http.StatusOK, requestID)
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "custom-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "custom-request-id-123", w.Body.String())
		assert.Equal(t, "custom-request-id-123", w.Header().Get("X-Request-ID"))
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		level   string
	}{
		{"logs successful request", http.StatusOK, "Request completed", "INFO"},
		{"logs 4xx request as warning", http.StatusBadRequest, "Request rejected", "WARN"},
		{"logs 5xx request as error", http.StatusInternalServerError, "Request failed", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := log.NewTestLogger(log.LevelDebug)
			router := gin.New()
			router.Use(RequestID())
			router.Use(Logger(logger))
			router.GET("/items/:id", func(c *gin.Context) {
				c.String(tt.status, "body")
			})

			req, _ := http.NewRequest("GET", "/items/7", nil)
			req.Header.Set("X-Request-ID", "rid")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			entries, err := logger.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.message, entries[0]["message"])
			assert.Equal(t, tt.level, entries[0]["level"])
			assert.Equal(t, "/items/:id", entries[0][log.RouteKey])
			assert.Equal(t, "rid", entries[0][log.RequestIDKey])
			assert.Equal(t, float64(tt.status), entries[0][log.StatusCodeKey])
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		logger, _ := log.NewTestLogger(log.LevelDebug)
		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(logger))
		router.GET("/test", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.True(t, logger.ContainsMessage("Panic recovered"))
		assert.True(t, logger.ContainsField(log.ErrAttrKey, "panic in GET /test: test panic"))
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		logger, _ := log.NewTestLogger(log.LevelDebug)
		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(logger))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, logger.ContainsMessage("Panic recovered"))
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	m.SetAccuracy("iris", 0.96)
	assert.Equal(t, 0.96, testutil.ToFloat64(m.accuracy.WithLabelValues("iris")))

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="/items/:id",status="200"} 2`), body)
	assert.Contains(t, body, "test_http_request_duration_seconds_bucket")
	assert.Contains(t, body, `test_dataset_accuracy_ratio{dataset="iris"} 0.96`)
	assert.Contains(t, body, "go_goroutines")
}
