package cron

import (
	"context"
	"fmt"

	"github.com/yumhub/yumhub-backend/internal/cart"
	"github.com/yumhub/yumhub-backend/pkg/logger"
)

// CartReconcileJobName labels the cart reconcile sweep in logs and metrics.
const CartReconcileJobName = "cart_reconcile"

type cartReconciler interface {
	ReconcileAll(ctx context.Context) (cart.ReconcileResult, error)
}

// CartReconcileJob flushes every cached cart to the database.
type CartReconcileJob struct {
	logg  *logger.Logger
	carts cartReconciler
}

func NewCartReconcileJob(logg *logger.Logger, carts cartReconciler) (*CartReconcileJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	return &CartReconcileJob{logg: logg, carts: carts}, nil
}

func (j *CartReconcileJob) Name() string { return CartReconcileJobName }

// Run fails only when the sweep itself could not start. Carts that fail to
// flush are counted and retried on the next sweep.
func (j *CartReconcileJob) Run(ctx context.Context) error {
	result, err := j.carts.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"synced": result.Synced,
		"total":  result.Total,
	}), "cart reconcile finished")
	return nil
}
