package refundwindow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/instance"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/metrics"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
	defaultRetryBackoff = 30 * time.Second
)

type refundDisabler interface {
	DisableRefund(ctx context.Context, orderID uuid.UUID) error
}

// WorkerParams configure the refund window worker.
type WorkerParams struct {
	Logger       *logger.Logger
	Queue        queueClient
	Orders       refundDisabler
	Metrics      *metrics.RefundWindowMetrics
	PollInterval time.Duration
	BatchSize    int
	RetryBackoff time.Duration
	Now          func() time.Time
}

// Worker drains due entries from the refund window queue.
type Worker struct {
	logg     *logger.Logger
	queue    queueClient
	key      string
	orders   refundDisabler
	metrics  *metrics.RefundWindowMetrics
	interval time.Duration
	batch    int
	backoff  time.Duration
	now      func() time.Time
	workerID string
}

// NewWorker builds the refund window worker.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("queue client required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	w := &Worker{
		logg:     params.Logger,
		queue:    params.Queue,
		key:      params.Queue.QueueKey(QueueName),
		orders:   params.Orders,
		metrics:  params.Metrics,
		interval: params.PollInterval,
		batch:    params.BatchSize,
		backoff:  params.RetryBackoff,
		now:      params.Now,
		workerID: instance.GetID(),
	}
	if w.interval <= 0 {
		w.interval = defaultPollInterval
	}
	if w.batch <= 0 {
		w.batch = defaultBatchSize
	}
	if w.backoff <= 0 {
		w.backoff = defaultRetryBackoff
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w, nil
}

// Run polls the queue until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ctx = w.logg.WithField(ctx, "worker_id", w.workerID)
	w.logg.Info(ctx, "refund window worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessDue(ctx); err != nil {
			w.logg.Error(ctx, "refund window poll failed", err)
		}
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "refund window worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessDue applies one batch of due expirations and returns how many
// orders had their refund window closed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	now := w.now()
	members, err := w.queue.ZRangeByScore(ctx, w.key, dueScore(now), int64(w.batch))
	if err != nil {
		return 0, fmt.Errorf("read refund window queue: %w", err)
	}

	applied := 0
	for _, member := range members {
		claimed, err := w.queue.ZRem(ctx, w.key, member)
		if err != nil {
			return applied, fmt.Errorf("claim refund window entry: %w", err)
		}
		if !claimed {
			// another worker took it
			continue
		}
		if w.apply(ctx, member, now) {
			applied++
		}
	}
	return applied, nil
}

func (w *Worker) apply(ctx context.Context, member string, now time.Time) bool {
	ctx = w.logg.WithOrderID(ctx, member)
	orderID, err := uuid.Parse(member)
	if err != nil {
		w.logg.Warn(ctx, "dropping malformed refund window entry")
		w.metrics.Inc(metrics.ResultFailure)
		return false
	}

	err = w.orders.DisableRefund(ctx, orderID)
	switch {
	case err == nil:
		w.metrics.Inc(metrics.ResultSuccess)
		w.logg.Debug(ctx, "refund window closed")
		return true
	case pkgerrors.IsCode(err, pkgerrors.CodeOrderNotFound):
		w.logg.Warn(ctx, "refund window entry for unknown order dropped")
		w.metrics.Inc(metrics.ResultFailure)
		return false
	}

	w.logg.Error(ctx, "close refund window failed", err)
	if requeueErr := w.queue.ZAdd(ctx, w.key, dueScore(now.Add(w.backoff)), member); requeueErr != nil {
		w.logg.Error(ctx, "requeue refund window entry failed", requeueErr)
		w.metrics.Inc(metrics.ResultFailure)
		return false
	}
	w.metrics.Inc(metrics.ResultRescheduled)
	return false
}
