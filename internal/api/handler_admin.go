package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort-facilities-backend/internal/slot"
)

// The usage report flags facilities with more than highUsageLimit bookings
// in the last usageWindow.
const (
	usageWindow    = 30 * 24 * time.Hour
	highUsageLimit = 30
)

// ListBookings handles GET /api/admin/bookings. The optional facility query
// parameter narrows the listing to one facility.
func (h *Handler) ListBookings(c *gin.Context) {
	facilities := slot.Facilities
	if raw := c.Query("facility"); raw != "" {
		f, err := slot.ParseFacility(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'facility'."})
			return
		}
		facilities = []slot.Facility{f}
	}

	all := make([]slot.Booking, 0)
	for _, f := range facilities {
		bookings, err := h.store.FetchBookings(c.Request.Context(), f)
		if err != nil {
			zap.L().Error("failed to list bookings", zap.String("facility", string(f)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve bookings"})
			return
		}
		all = append(all, bookings...)
	}
	c.JSON(http.StatusOK, all)
}

type usageRow struct {
	Facility slot.Facility `json:"facility"`
	Bookings int64         `json:"bookings"`
	Status   string        `json:"status"`
}

// UsageReport handles GET /api/admin/reports/usage: bookings per facility
// whose period started within the last 30 days.
func (h *Handler) UsageReport(c *gin.Context) {
	since := h.bookings.Now().Add(-usageWindow)

	rows := make([]usageRow, 0, len(slot.Facilities))
	for _, f := range slot.Facilities {
		count, err := h.store.CountBookingsSince(c.Request.Context(), f, since)
		if err != nil {
			zap.L().Error("failed to count bookings", zap.String("facility", string(f)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to build usage report"})
			return
		}
		status := "Normal"
		if count > highUsageLimit {
			status = "High Usage"
		}
		rows = append(rows, usageRow{Facility: f, Bookings: count, Status: status})
	}

	c.JSON(http.StatusOK, gin.H{"since": since.UTC(), "facilities": rows})
}
