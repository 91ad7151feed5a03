package refundwindow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scheduler enqueues refund-window expirations.
type Scheduler struct {
	queue queueClient
	key   string
	now   func() time.Time
}

// NewScheduler builds a scheduler writing to the refund window queue.
func NewScheduler(queue queueClient) (*Scheduler, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue client required")
	}
	return &Scheduler{
		queue: queue,
		key:   queue.QueueKey(QueueName),
		now:   time.Now,
	}, nil
}

// ScheduleOnce arranges for the order's refund window to close after delay.
// Scheduling the same order again moves its due time instead of adding a
// second entry.
func (s *Scheduler) ScheduleOnce(ctx context.Context, delay time.Duration, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("order id required")
	}
	if delay < 0 {
		delay = 0
	}
	due := s.now().Add(delay)
	if err := s.queue.ZAdd(ctx, s.key, dueScore(due), orderID.String()); err != nil {
		return fmt.Errorf("enqueue refund window for %s: %w", orderID, err)
	}
	return nil
}
