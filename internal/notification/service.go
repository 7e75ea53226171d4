package notification

import (
	"context"
	"log"

	"github.com/google/uuid"

	"laundry-booking-backend/internal/clock"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// Service is the notification port implementation: it records a Notification
// row synchronously (so dedup queries see it immediately) and queues web push
// delivery to the worker pool. Delivery is at-least-once.
type Service struct {
	store store.Store
	clock clock.Clock
	pool  *WorkerPool
}

// NewService creates the notification service. pool may be nil to disable
// push delivery (notifications are still persisted).
func NewService(s store.Store, clk clock.Clock, pool *WorkerPool) *Service {
	return &Service{store: s, clock: clk, pool: pool}
}

// Notify records and dispatches one notification. Failures are logged, never
// surfaced: notification loss must not fail the reservation flow around it.
func (s *Service) Notify(ctx context.Context, recipientID string, category model.NotificationCategory, title, body string) {
	n := &model.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Category:    category,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to persist notification for user %s: %v", recipientID, err)
		return
	}

	if s.pool != nil {
		s.pool.Dispatch(recipientID, title, body)
	}
}
