package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort-facilities-backend/internal/slot"
)

func seedBooking(t *testing.T, env *testEnv, f slot.Facility, uid string, start time.Time, machine slot.ResourceType) {
	t.Helper()
	_, err := env.store.CreateBooking(context.Background(), slot.Booking{
		Facility:   f,
		Period:     slot.Period{StartFrom: slot.InstantOf(start), EndAt: slot.InstantOf(start.Add(time.Hour))},
		Client:     slot.Client{UID: uid},
		Facilities: slot.FacilitiesFor(machine),
	})
	require.NoError(t, err)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/api/admin/bookings", "/api/admin/reports/usage"} {
		assert.Equal(t, http.StatusUnauthorized, env.do("GET", target, "", nil).Code)
		assert.Equal(t, http.StatusForbidden, env.do("GET", target, env.guestToken, nil).Code)
		assert.Equal(t, http.StatusOK, env.do("GET", target, env.adminToken, nil).Code)
	}
}

func TestListBookings(t *testing.T) {
	env := newTestEnv(t)
	seedBooking(t, env, slot.FacilitySauna, "guest-1", time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), "")
	seedBooking(t, env, slot.FacilityLaundry, "guest-2", time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), slot.ResourceDryer)

	var all []slot.Booking
	w := env.do("GET", "/api/admin/bookings", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	var laundry []slot.Booking
	w = env.do("GET", "/api/admin/bookings?facility=laundry", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &laundry))
	require.Len(t, laundry, 1)
	assert.Equal(t, "guest-2", laundry[0].Client.UID)

	w = env.do("GET", "/api/admin/bookings?facility=gym", env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsageReport(t *testing.T) {
	env := newTestEnv(t)

	// 31 recent sauna bookings push the sauna over the limit.
	start := testNow.Add(-10 * 24 * time.Hour).Truncate(time.Hour)
	for i := 0; i < 31; i++ {
		seedBooking(t, env, slot.FacilitySauna, "guest-1", start.Add(time.Duration(i)*time.Hour), "")
	}
	// Older than the window.
	seedBooking(t, env, slot.FacilityLaundry, "guest-1", testNow.Add(-40*24*time.Hour), slot.ResourceWasher)
	seedBooking(t, env, slot.FacilityLaundry, "guest-1", testNow.Add(24*time.Hour), slot.ResourceWasher)

	w := env.do("GET", "/api/admin/reports/usage", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Facilities []usageRow `json:"facilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Facilities, 2)
	assert.Equal(t, usageRow{Facility: slot.FacilitySauna, Bookings: 31, Status: "High Usage"}, report.Facilities[0])
	assert.Equal(t, usageRow{Facility: slot.FacilityLaundry, Bookings: 1, Status: "Normal"}, report.Facilities[1])
}
