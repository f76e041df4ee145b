package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, path string, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = GetRequestID(c) })

	w := serve(r, http.MethodGet, "/x", "", map[string]string{HeaderRequestID: "abc"})
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc", seen)

	w = serve(r, http.MethodGet, "/x", "", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), seen)
}

func TestRequestLogging(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(RequestID(), RequestLogging(log, DefaultLoggingConfig()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/ok", "", nil)
	serve(r, http.MethodGet, "/bad", "", nil)
	serve(r, http.MethodGet, "/boom", "", nil)
	serve(r, http.MethodGet, "/healthz", "", nil)

	assert.True(t, log.HasMessage("info", "HTTP request completed"))
	assert.True(t, log.HasMessage("warn", "HTTP request completed with client error"))
	assert.True(t, log.HasMessage("error", "HTTP request completed with server error"))
	assert.Len(t, log.GetMessages(), 3, "probe paths are skipped")
}

func TestRecovery(t *testing.T) {
	log := testutil.NewMockLogger()
	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, log.HasMessage("error", "panic recovered"))
}

type httpObservation struct {
	method, path string
	status       int
}

type recordingHTTP struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (r *recordingHTTP) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, httpObservation{method, path, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	rec := &recordingHTTP{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/v1/runs/:id/variants", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/v1/runs/abc/variants", "", nil)
	serve(r, http.MethodGet, "/nowhere", "", nil)

	require.Len(t, rec.obs, 2)
	assert.Equal(t, httpObservation{http.MethodGet, "/v1/runs/:id/variants", http.StatusOK}, rec.obs[0])
	assert.Equal(t, "unmatched", rec.obs[1].path)
	assert.Equal(t, http.StatusNotFound, rec.obs[1].status)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		var v map[string]interface{}
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/echo", `{"a":"0123456789"}`, nil).Code)
}

func TestTokenBucketLimiter(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2, 0)
	defer l.Stop()
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Remaining)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "keys are independent")
	assert.Equal(t, 2, l.BucketCount())

	now = now.Add(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "one token refilled")
}

func TestTokenBucketLimiter_SetRate(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	defer l.Stop()
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("a")
	assert.False(t, ok)

	l.SetRate(10, 3)
	now = now.Add(time.Second)
	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 3, info.Limit)
	assert.Equal(t, 2, info.Remaining, "refill capped to the new burst")

	ok, info = l.Allow("fresh")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Remaining, "new buckets start at the new burst")

	l.SetRate(1, 0)
	_, info = l.Allow("a")
	assert.Equal(t, 1, info.Limit)
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	l := NewTokenBucketLimiter(10, 5, 0)
	l.cleanupInterval = time.Minute
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.Allow("idle")
	now = now.Add(2 * time.Minute)
	l.cleanup()
	assert.Equal(t, 0, l.BucketCount())
	l.Stop()
	l.Stop()
}

func TestRateLimit(t *testing.T) {
	l := NewTokenBucketLimiter(0.001, 1, 0)
	defer l.Stop()
	r := gin.New()
	r.Use(RateLimit(l, DefaultRateLimitConfig()))
	r.GET("/v1/rules", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/v1/rules", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = serve(r, http.MethodGet, "/v1/rules", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "", nil).Code)
}

//Personal.AI order the ending
