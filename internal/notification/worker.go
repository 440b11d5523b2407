package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carestay-backend/internal/metrics"
	"carestay-backend/internal/model"
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

// WorkerPool sends vacancy alerts to the subscribers of a room's sector.
type WorkerPool struct {
	size    int
	jobs    chan model.Room
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
	rec     metrics.Recorder
}

// NewWorkerPool creates a new worker pool. queueSize bounds the number of
// pending vacancies; further ones are dropped.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options, log *zap.Logger, rec metrics.Recorder) *WorkerPool {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Room, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log.Named("push"),
		rec:     rec,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case room := <-wp.jobs:
			wp.sendNotificationsForRoom(ctx, room)
		case <-ctx.Done():
			wp.log.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a vacancy without blocking. It has the signature of a
// store vacancy hook, and is called while HTTP requests are in flight.
func (wp *WorkerPool) Dispatch(room model.Room) {
	select {
	case wp.jobs <- room:
	default:
		wp.rec.IncNotification("dropped")
		wp.log.Warn("notification queue full, dropping vacancy",
			zap.Int64("room_id", room.ID), zap.String("sector", string(room.Sector)))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.Room {
	return wp.jobs
}

// Message is the text pushed for a vacant room.
func Message(room model.Room) string {
	return fmt.Sprintf("Chambre %s (%s) disponible", room.Number, room.Sector)
}

func (wp *WorkerPool) sendNotificationsForRoom(ctx context.Context, room model.Room) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_sectors ss ON ss.endpoint = push_subscriptions.endpoint").
		Where("ss.sector = ?", string(room.Sector)).
		Find(&subscriptions).Error
	if err != nil {
		wp.log.Error("failed to fetch subscriptions",
			zap.String("sector", string(room.Sector)), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.log.Info("sending vacancy notifications",
		zap.Int64("room_id", room.ID), zap.Int("subscribers", len(subscriptions)))
	message := []byte(Message(room))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, message)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.rec.IncNotification("failed")
		wp.log.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.rec.IncNotification("expired")
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := DeleteSubscription(wp.db.WithContext(ctx), sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return
	}
	if resp.StatusCode >= 400 {
		wp.rec.IncNotification("failed")
		wp.log.Warn("push service rejected notification",
			zap.String("endpoint", sub.Endpoint), zap.Int("status", resp.StatusCode))
		return
	}
	wp.rec.IncNotification("sent")
}

// DeleteSubscription removes a subscription together with its sector rows.
func DeleteSubscription(db *gorm.DB, endpoint string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.SubscriptionSector{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription sectors: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}
