package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamSlots handles GET /api/facilities/{facility}/slots/stream. It sends
// the caller's slot view as a server-sent "slots" event on connect, after
// every booking change of the facility, and every streamResend so that
// slots crossing the cutoff show up as locked. Without a date parameter each
// event shows the current day's window.
func (h *Handler) StreamSlots(c *gin.Context) {
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
	// Without an explicit date the stream follows today across midnight.
	follow := c.Query("date") == ""

	sub := h.broker.Open(f)
	defer sub.Close()
	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	send := func() {
		if follow {
			ref = h.bookings.Now()
		}
		slots, err := h.bookings.View(ctx, f, ref, view, who)
		if err != nil {
			zap.L().Warn("slot stream refresh failed", zap.String("facility", string(f)), zap.Error(err))
			c.SSEvent("error", gin.H{"error": "Failed to retrieve bookings"})
		} else {
			c.SSEvent("slots", slots)
		}
		c.Writer.Flush()
	}

	send()

	ticker := time.NewTicker(h.streamResend)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-sub.C():
			if !open {
				return
			}
			send()
		case <-ticker.C:
			send()
		}
	}
}
