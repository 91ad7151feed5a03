// Package refundwindow closes the refund window of orders once their grace
// period elapses. Due orders sit in a Redis sorted set scored by the unix
// time at which the window closes.
package refundwindow

import (
	"context"
	"time"
)

// QueueName is the sorted set holding pending refund-window expirations.
const QueueName = "refund_window"

type queueClient interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRangeByScore(ctx context.Context, key string, max float64, limit int64) ([]string, error)
	ZRem(ctx context.Context, key string, member string) (bool, error)
	QueueKey(name string) string
}

func dueScore(at time.Time) float64 {
	return float64(at.Unix())
}
