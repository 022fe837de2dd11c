package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"resort-facilities-backend/internal/identity"
	"resort-facilities-backend/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, perform(r, "GET", "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, "GET", "/ping", nil).Code)

	w := perform(r, "GET", "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, w.Body.String())
}

func TestLimiters_ReuseAndExpire(t *testing.T) {
	l := NewLimiters(rate.Limit(1), 1, 50*time.Millisecond)
	first := l.Get("ip:10.0.0.1")
	assert.Same(t, first, l.Get("ip:10.0.0.1"))
	l.Get("ip:10.0.0.2")
	assert.Equal(t, 2, l.Len())

	time.Sleep(80 * time.Millisecond)
	assert.NotSame(t, first, l.Get("ip:10.0.0.1"))
}

func TestClickLimiter_PerCaller(t *testing.T) {
	provider := identity.NewProvider("secret", "")
	tokenA, err := provider.Issue(identity.Identity{UID: "a"}, time.Hour)
	require.NoError(t, err)
	tokenB, err := provider.Issue(identity.Identity{UID: "b"}, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Identity(provider), ClickLimiter(rate.Limit(1), 1))
	r.POST("/click", func(c *gin.Context) { c.Status(http.StatusOK) })

	bearer := func(token string) http.Header {
		return http.Header{"Authorization": {"Bearer " + token}}
	}

	assert.Equal(t, http.StatusOK, perform(r, "POST", "/click", bearer(tokenA)).Code)
	w := perform(r, "POST", "/click", bearer(tokenA))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"too many booking requests"}`, w.Body.String())

	// Same address, different user.
	assert.Equal(t, http.StatusOK, perform(r, "POST", "/click", bearer(tokenB)).Code)
}

func TestCache(t *testing.T) {
	var calls int
	r := gin.New()
	r.GET("/facilities", Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := perform(r, "GET", "/facilities", nil)
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())

	second := perform(r, "GET", "/facilities", nil)
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)
}

func TestCache_SkipsErrors(t *testing.T) {
	var calls int
	r := gin.New()
	r.GET("/broken", Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	perform(r, "GET", "/broken", nil)
	perform(r, "GET", "/broken", nil)
	assert.Equal(t, 2, calls)
}

func TestIdentity(t *testing.T) {
	provider := identity.NewProvider("secret", "")
	guest, err := provider.Issue(identity.Identity{UID: "u1", FullName: "Guest"}, time.Hour)
	require.NoError(t, err)
	admin, err := provider.Issue(identity.Identity{UID: "a1", IsAdmin: true}, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Identity(provider))
	r.GET("/me", func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, id)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	testCases := []struct {
		name   string
		target string
		header http.Header
		status int
	}{
		{name: "no token", target: "/me", status: http.StatusUnauthorized},
		{name: "bad token", target: "/me", header: http.Header{"Authorization": {"Bearer nope"}}, status: http.StatusUnauthorized},
		{name: "wrong scheme", target: "/me", header: http.Header{"Authorization": {"Basic " + guest}}, status: http.StatusUnauthorized},
		{name: "bearer header", target: "/me", header: http.Header{"Authorization": {"Bearer " + guest}}, status: http.StatusOK},
		{name: "query token", target: "/me?access_token=" + guest, status: http.StatusOK},
		{name: "guest on admin route", target: "/admin", header: http.Header{"Authorization": {"Bearer " + guest}}, status: http.StatusForbidden},
		{name: "admin on admin route", target: "/admin", header: http.Header{"Authorization": {"bearer " + admin}}, status: http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, "GET", tc.target, tc.header)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := perform(r, "GET", "/me", http.Header{"Authorization": {"Bearer " + guest}})
	assert.JSONEq(t, `{"uid":"u1","fullName":"Guest","isAdmin":false}`, w.Body.String())
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(Metrics(metrics.New(reg)))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, "GET", "/healthz", nil)
	perform(r, "GET", "/healthz", nil)
	perform(r, "GET", "/missing", nil)

	// One series per (method, route, status): the health check and the 404.
	count, err := testutil.GatherAndCount(reg, "resort_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
