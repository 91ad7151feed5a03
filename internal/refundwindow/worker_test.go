package refundwindow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yumhub/yumhub-backend/pkg/errors"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/metrics"
	"github.com/yumhub/yumhub-backend/pkg/redis"
)

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeOrders struct {
	mu       sync.Mutex
	disabled []uuid.UUID
	errs     map[uuid.UUID]error
}

func (f *fakeOrders) DisableRefund(_ context.Context, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[orderID]; err != nil {
		return err
	}
	f.disabled = append(f.disabled, orderID)
	return nil
}

type queueEnv struct {
	client *redis.Client
	mr     *miniredis.Miniredis
	key    string
}

func newQueueEnv(t *testing.T) queueEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redis.NewFromRedis(raw)
	return queueEnv{client: client, mr: mr, key: client.QueueKey(QueueName)}
}

func newTestWorker(t *testing.T, env queueEnv, orders *fakeOrders, now *time.Time) *Worker {
	t.Helper()
	w, err := NewWorker(WorkerParams{
		Logger:       logger.New(logger.Options{ServiceName: "refundwindow-test", Output: io.Discard}),
		Queue:        env.client,
		Orders:       orders,
		Metrics:      metrics.NewRefundWindowMetrics(prometheus.NewRegistry()),
		BatchSize:    10,
		RetryBackoff: time.Minute,
		Now:          func() time.Time { return *now },
	})
	require.NoError(t, err)
	return w
}

func newTestScheduler(t *testing.T, env queueEnv, now *time.Time) *Scheduler {
	t.Helper()
	s, err := NewScheduler(env.client)
	require.NoError(t, err)
	s.now = func() time.Time { return *now }
	return s
}

func TestScheduleOnceScoresByDueTime(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	s := newTestScheduler(t, env, &now)
	orderID := uuid.New()

	require.NoError(t, s.ScheduleOnce(context.Background(), 5*time.Minute, orderID))

	score, err := env.mr.ZScore(env.key, orderID.String())
	require.NoError(t, err)
	assert.Equal(t, float64(baseTime.Add(5*time.Minute).Unix()), score)
	assert.Equal(t, "yh:queue:refund_window", env.key)

	// Rescheduling moves the entry rather than duplicating it.
	require.NoError(t, s.ScheduleOnce(context.Background(), time.Minute, orderID))
	members, err := env.mr.ZMembers(env.key)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	assert.Error(t, s.ScheduleOnce(context.Background(), time.Minute, uuid.Nil))
}

func TestScheduleOnceFailsWhenRedisDown(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	s := newTestScheduler(t, env, &now)
	env.mr.Close()

	assert.Error(t, s.ScheduleOnce(context.Background(), time.Minute, uuid.New()))
}

func TestProcessDueOnlyTouchesDueEntries(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	s := newTestScheduler(t, env, &now)
	orders := &fakeOrders{}
	w := newTestWorker(t, env, orders, &now)
	ctx := context.Background()

	early, late := uuid.New(), uuid.New()
	require.NoError(t, s.ScheduleOnce(ctx, 5*time.Minute, early))
	require.NoError(t, s.ScheduleOnce(ctx, 10*time.Minute, late))

	applied, err := w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	now = baseTime.Add(5 * time.Minute)
	applied, err = w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []uuid.UUID{early}, orders.disabled)

	now = baseTime.Add(time.Hour)
	applied, err = w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []uuid.UUID{early, late}, orders.disabled)
	assert.False(t, env.mr.Exists(env.key))
}

func TestProcessDueRequeuesTransientFailures(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	s := newTestScheduler(t, env, &now)
	orderID := uuid.New()
	orders := &fakeOrders{errs: map[uuid.UUID]error{
		orderID: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "disable refund"),
	}}
	w := newTestWorker(t, env, orders, &now)
	ctx := context.Background()
	require.NoError(t, s.ScheduleOnce(ctx, 0, orderID))

	applied, err := w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	score, err := env.mr.ZScore(env.key, orderID.String())
	require.NoError(t, err)
	assert.Equal(t, float64(baseTime.Add(time.Minute).Unix()), score)

	delete(orders.errs, orderID)
	now = baseTime.Add(time.Minute)
	applied, err = w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []uuid.UUID{orderID}, orders.disabled)
}

func TestProcessDueDropsUnknownOrdersAndGarbage(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	orderID := uuid.New()
	orders := &fakeOrders{errs: map[uuid.UUID]error{
		orderID: pkgerrors.New(pkgerrors.CodeOrderNotFound, "order not found"),
	}}
	w := newTestWorker(t, env, orders, &now)
	ctx := context.Background()
	_, err := env.mr.ZAdd(env.key, float64(baseTime.Unix()), orderID.String())
	require.NoError(t, err)
	_, err = env.mr.ZAdd(env.key, float64(baseTime.Unix()), "not-a-uuid")
	require.NoError(t, err)

	applied, err := w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.False(t, env.mr.Exists(env.key))
}

func TestProcessDueSkipsEntriesClaimedElsewhere(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	orders := &fakeOrders{}
	orderID := uuid.New()
	w := newTestWorker(t, env, orders, &now)
	w.queue = &racingQueue{queueClient: env.client, steal: true}
	_, err := env.mr.ZAdd(env.key, float64(baseTime.Unix()), orderID.String())
	require.NoError(t, err)

	applied, err := w.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Empty(t, orders.disabled)
}

func TestProcessDueReportsQueueOutage(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	w := newTestWorker(t, env, &fakeOrders{}, &now)
	env.mr.Close()

	_, err := w.ProcessDue(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newQueueEnv(t)
	now := baseTime
	orders := &fakeOrders{}
	w := newTestWorker(t, env, orders, &now)
	w.interval = 10 * time.Millisecond
	orderID := uuid.New()
	_, err := env.mr.ZAdd(env.key, float64(baseTime.Unix()), orderID.String())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		orders.mu.Lock()
		defer orders.mu.Unlock()
		return len(orders.disabled) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNewWorkerValidatesParams(t *testing.T) {
	_, err := NewWorker(WorkerParams{})
	assert.Error(t, err)
	_, err = NewScheduler(nil)
	assert.Error(t, err)
}

// racingQueue simulates another worker removing every entry first.
type racingQueue struct {
	queueClient
	steal bool
}

func (r *racingQueue) ZRem(ctx context.Context, key, member string) (bool, error) {
	if r.steal {
		if _, err := r.queueClient.ZRem(ctx, key, member); err != nil {
			return false, err
		}
		return false, nil
	}
	return r.queueClient.ZRem(ctx, key, member)
}
