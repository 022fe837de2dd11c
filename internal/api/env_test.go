package api

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resort-facilities-backend/config"
	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/identity"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/model"
	"resort-facilities-backend/internal/slot"
	"resort-facilities-backend/internal/store"
	"resort-facilities-backend/internal/stream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testNow is a Monday morning; 2024-06-05 10:00 is well outside the cutoff.
var testNow = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the handler and the test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	clock      *testClock
	router     *gin.Engine
	store      store.Store
	broker     *stream.Broker
	guestToken string
	otherToken string
	adminToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.FacilityBooking{}, &model.PushSubscription{}))

	s := store.NewGormStore(db)
	broker := stream.NewBroker()
	clock := &testClock{now: testNow}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	bookings := booking.NewHandler(s, slot.NewGrid(time.UTC, time.Monday), booking.NewPending(time.Minute),
		booking.WithClock(clock.Now),
		booking.WithPublisher(broker),
		booking.WithMetrics(m),
	)

	provider := identity.NewProvider("test-secret", "resort")
	issue := func(id identity.Identity) string {
		token, err := provider.Issue(id, time.Hour)
		require.NoError(t, err)
		return token
	}

	router := NewRouter(config.ServerConfig{
		RateLimitPerSec:  1000,
		RateLimitBurst:   1000,
		CacheTTLSeconds:  60,
		StreamResendSecs: 60,
	}, Deps{
		Store:    s,
		Bookings: bookings,
		Broker:   broker,
		Verifier: provider,
		WebPush:  &webpush.Options{VAPIDPublicKey: "test-public-key"},
		Metrics:  m,
		Gatherer: reg,
	})

	return &testEnv{
		clock:      clock,
		router:     router,
		store:      s,
		broker:     broker,
		guestToken: issue(identity.Identity{UID: "guest-1", FullName: "Aino Guest"}),
		otherToken: issue(identity.Identity{UID: "guest-2", FullName: "Eero Guest"}),
		adminToken: issue(identity.Identity{UID: "admin-1", FullName: "Front Desk", IsAdmin: true}),
	}
}

func (e *testEnv) do(method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)
	return w
}
