package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/slot"
)

type facilityResponse struct {
	Name          slot.Facility       `json:"name"`
	ResourceTypes []slot.ResourceType `json:"resourceTypes"`
	FirstHour     int                 `json:"firstHour"`
	LastHour      int                 `json:"lastHour"`
	SlotMinutes   int                 `json:"slotMinutes"`
	CutoffMinutes int                 `json:"cutoffMinutes"`
	Timezone      string              `json:"timezone"`
	WeekStart     string              `json:"weekStart"`
}

// GetFacilities handles the GET /api/facilities request.
func (h *Handler) GetFacilities(c *gin.Context) {
	grid := h.bookings.Grid()
	response := make([]facilityResponse, 0, len(slot.Facilities))
	for _, f := range slot.Facilities {
		response = append(response, facilityResponse{
			Name:          f,
			ResourceTypes: f.ResourceTypes(),
			FirstHour:     slot.FirstHour,
			LastHour:      slot.LastHour,
			SlotMinutes:   int(slot.Length.Minutes()),
			CutoffMinutes: int(booking.Cutoff.Minutes()),
			Timezone:      grid.Location.String(),
			WeekStart:     grid.WeekStart.String(),
		})
	}
	c.JSON(http.StatusOK, response)
}
