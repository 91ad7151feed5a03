package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultRescheduled = "rescheduled"
)

// CartMetrics counts cart reconciliation outcomes and cache hydrations.
type CartMetrics struct {
	reconciled *prometheus.CounterVec
	hydrations prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_reconcile_users_total",
		Help:      "Per-user cart flushes attempted by the reconciliation sweep.",
	}, []string{"result"})
	hydrations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_cache_hydrations_total",
		Help:      "Cart snapshots loaded from the database after a cache miss.",
	})
	reg.MustRegister(reconciled, hydrations)
	return &CartMetrics{reconciled: reconciled, hydrations: hydrations}
}

// ObserveReconcile records a sweep outcome.
func (c *CartMetrics) ObserveReconcile(synced, total int) {
	if c == nil || c.reconciled == nil {
		return
	}
	c.reconciled.WithLabelValues(ResultSuccess).Add(float64(synced))
	c.reconciled.WithLabelValues(ResultFailure).Add(float64(total - synced))
}

// IncHydration records one cache-miss hydration.
func (c *CartMetrics) IncHydration() {
	if c == nil || c.hydrations == nil {
		return
	}
	c.hydrations.Inc()
}

// RefundWindowMetrics counts refund-window expirations applied by the worker.
type RefundWindowMetrics struct {
	processed *prometheus.CounterVec
}

// NewRefundWindowMetrics registers the refund window metrics on the provided registerer.
func NewRefundWindowMetrics(reg prometheus.Registerer) *RefundWindowMetrics {
	if reg == nil {
		return &RefundWindowMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refund_window_expirations_total",
		Help:      "Refund window expirations processed, by result.",
	}, []string{"result"})
	reg.MustRegister(processed)
	return &RefundWindowMetrics{processed: processed}
}

// Inc records one processed expiration with the given result label.
func (r *RefundWindowMetrics) Inc(result string) {
	if r == nil || r.processed == nil {
		return
	}
	r.processed.WithLabelValues(normalizeLabel(result)).Inc()
}
