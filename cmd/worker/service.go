package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yumhub/yumhub-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger       *logger.Logger
	DB           pinger
	Redis        pinger
	Cron         runner
	RefundWindow runner
}

// Service runs the cron sweep and the refund window worker side by side.
// Either one failing stops the other.
type Service struct {
	logg         *logger.Logger
	db           pinger
	redis        pinger
	cron         runner
	refundWindow runner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.Cron == nil {
		return nil, errors.New("cron service is required")
	}
	if params.RefundWindow == nil {
		return nil, errors.New("refund window worker is required")
	}
	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		redis:        params.Redis,
		cron:         params.Cron,
		refundWindow: params.RefundWindow,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run blocks until ctx is canceled or a component fails. Cancellation is
// reported as a nil error.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ignoreCanceled(s.cron.Run(groupCtx))
	})
	group.Go(func() error {
		return ignoreCanceled(s.refundWindow.Run(groupCtx))
	})

	if err := group.Wait(); err != nil {
		s.logg.Error(ctx, "worker component stopped unexpectedly", err)
		return err
	}
	s.logg.Info(ctx, "worker context canceled")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
