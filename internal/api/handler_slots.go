package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/slot"
)

const dateLayout = "2006-01-02"

type slotsResponse struct {
	Facility slot.Facility      `json:"facility"`
	View     slot.View          `json:"view"`
	Date     string             `json:"date"`
	Slots    []booking.SlotView `json:"slots"`
}

// viewParams reads the date and view query parameters. The date defaults to
// today in the grid's timezone and the view to weekly.
func (h *Handler) viewParams(c *gin.Context) (time.Time, slot.View, bool) {
	view, err := slot.ParseView(c.Query("view"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'view'. Use daily or weekly."})
		return time.Time{}, "", false
	}

	loc := h.bookings.Grid().Location
	ref := h.bookings.Now().In(loc)
	if raw := c.Query("date"); raw != "" {
		ref, err = time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date' format. Use YYYY-MM-DD."})
			return time.Time{}, "", false
		}
	}
	return ref, view, true
}

// GetSlots handles the GET /api/facilities/{facility}/slots request.
func (h *Handler) GetSlots(c *gin.Context) {
	f, ok := facility(c)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}
	ref, view, ok := h.viewParams(c)
	if !ok {
		return
	}

	slots, err := h.bookings.View(c.Request.Context(), f, ref, view, who)
	if err != nil {
		zap.L().Error("failed to build slot view", zap.String("facility", string(f)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve bookings"})
		return
	}

	c.JSON(http.StatusOK, slotsResponse{
		Facility: f,
		View:     view,
		Date:     ref.Format(dateLayout),
		Slots:    slots,
	})
}

// ClickSlot handles the POST /api/facilities/{facility}/slots/{slot_id}/click
// request, the single mutation path for bookings.
func (h *Handler) ClickSlot(c *gin.Context) {
	f, ok := facility(c)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	res := h.bookings.HandleSlotClick(c.Request.Context(), f, c.Param("slot_id"), who)
	c.JSON(statusFor(res.Err), res)
}

// GetMyBookings handles the GET /api/facilities/{facility}/bookings request.
func (h *Handler) GetMyBookings(c *gin.Context) {
	f, ok := facility(c)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.MyBookings(c.Request.Context(), f, who)
	if err != nil {
		zap.L().Error("failed to list bookings", zap.String("facility", string(f)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}
