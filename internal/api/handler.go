package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/identity"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/mw"
	"resort-facilities-backend/internal/slot"
	"resort-facilities-backend/internal/store"
	"resort-facilities-backend/internal/stream"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	bookings     *booking.Handler
	broker       *stream.Broker
	webpush      *webpush.Options
	metrics      *metrics.Metrics
	streamResend time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, bookings *booking.Handler, broker *stream.Broker, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:        s,
		bookings:     bookings,
		broker:       broker,
		webpush:      webpushOptions,
		streamResend: time.Minute,
	}
}

// facility resolves the :facility path parameter, answering 404 for
// facilities the grid does not know.
func facility(c *gin.Context) (slot.Facility, bool) {
	f, err := slot.ParseFacility(c.Param("facility"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "facility not found"})
		return "", false
	}
	return f, true
}

// caller returns the identity set by mw.Identity.
func caller(c *gin.Context) (identity.Identity, bool) {
	who, ok := mw.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return identity.Identity{}, false
	}
	return who, true
}

// statusFor maps a command error to its HTTP status.
func statusFor(err error) int {
	switch booking.Kind(err) {
	case "ok":
		return http.StatusOK
	case "invalid_slot", "validation":
		return http.StatusBadRequest
	case "unauthorized":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "conflict", "pending":
		return http.StatusConflict
	case "cutoff":
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// Healthz reports whether the database answers.
func (h *Handler) Healthz(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
