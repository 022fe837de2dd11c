package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is one notice addressed to every browser a client registered.
type Job struct {
	ClientUID string
	Notice    booking.Notice
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	metrics *metrics.Metrics
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, m *metrics.Metrics) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		metrics: m,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	zap.L().Debug("push worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForClient(ctx, job)
		case <-ctx.Done():
			zap.L().Debug("push worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch sends a job to the worker pool. It never blocks the caller: when
// the queue is full the job is dropped, since confirmations are best effort
// and the booking itself has already been committed.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		zap.L().Warn("push queue full, dropping notice", zap.String("client_uid", job.ClientUID))
		wp.metrics.PushSent("dropped")
		return false
	}
}

// Notify queues n for the browsers of uid.
func (wp *WorkerPool) Notify(uid string, n booking.Notice) {
	wp.Dispatch(Job{ClientUID: uid, Notice: n})
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// sendNotificationsForClient fetches the client's subscriptions and pushes the notice to each.
func (wp *WorkerPool) sendNotificationsForClient(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("client_uid = ?", job.ClientUID).
		Find(&subscriptions).Error
	if err != nil {
		zap.L().Error("failed to fetch push subscriptions", zap.String("client_uid", job.ClientUID), zap.Error(err))
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(job.Notice)
	if err != nil {
		zap.L().Error("failed to encode notice", zap.Error(err))
		return
	}

	zap.L().Debug("sending push notices", zap.String("client_uid", job.ClientUID), zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		zap.L().Warn("failed to send push notice", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		wp.metrics.PushSent("failed")
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		zap.L().Info("push subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		wp.metrics.PushSent("expired")
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			zap.L().Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return
	}
	wp.metrics.PushSent("sent")
}
