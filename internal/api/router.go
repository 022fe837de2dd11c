package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"resort-facilities-backend/config"
	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/mw"
	"resort-facilities-backend/internal/store"
	"resort-facilities-backend/internal/stream"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store    store.Store
	Bookings *booking.Handler
	Broker   *stream.Broker
	Verifier mw.TokenVerifier
	WebPush  *webpush.Options
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
}

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(), mw.Metrics(d.Metrics))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	handler := NewHandler(d.Store, d.Bookings, d.Broker, d.WebPush)
	handler.metrics = d.Metrics
	if resend := cfg.StreamResend(); resend > 0 {
		handler.streamResend = resend
	}

	limit := rate.Limit(cfg.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Inf
	}
	rateLimiter := mw.RateLimiter(limit, cfg.RateLimitBurst)

	clickLimit := rate.Limit(cfg.ClickRatePerSec)
	if clickLimit <= 0 {
		clickLimit = rate.Inf
	}
	clickLimiter := mw.ClickLimiter(clickLimit, cfg.ClickBurst)

	cacheTTL := cfg.CacheTTL()
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/healthz", handler.Healthz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// The catalogue is the same for every caller, so it is safe to cache.
		api.GET("/facilities", caching, handler.GetFacilities)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// Authenticated API group
	authed := api.Group("")
	authed.Use(mw.Identity(d.Verifier))
	{
		authed.GET("/facilities/:facility/slots", handler.GetSlots)
		authed.GET("/facilities/:facility/slots/stream", handler.StreamSlots)
		authed.POST("/facilities/:facility/slots/:slot_id/click", clickLimiter, handler.ClickSlot)
		authed.GET("/facilities/:facility/bookings", handler.GetMyBookings)

		authed.GET("/subscriptions", handler.GetSubscription)
		authed.PUT("/subscriptions", handler.PutSubscription)
		authed.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	admin := authed.Group("/admin")
	admin.Use(mw.RequireAdmin())
	{
		admin.GET("/bookings", handler.ListBookings)
		admin.GET("/reports/usage", handler.UsageReport)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", mw.CacheHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
