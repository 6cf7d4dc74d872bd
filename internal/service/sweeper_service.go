package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/districtops/transport-api/pkg/config"
	"github.com/districtops/transport-api/pkg/jobs"
)

type sweeperRepository interface {
	CompletePast(ctx context.Context, before time.Time) (int64, error)
}

// SweeperService periodically transitions past-dated open activities to
// COMPLETED through a background job queue.
type SweeperService struct {
	repo     sweeperRepository
	queue    *jobs.Queue
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewSweeperService instantiates SweeperService.
func NewSweeperService(repo sweeperRepository, cfg config.SweeperConfig, logger *zap.Logger) *SweeperService {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s := &SweeperService{repo: repo, interval: interval, logger: logger}
	s.queue = jobs.NewQueue("activity-sweeper", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the periodic tick.
func (s *SweeperService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.queue.Enqueue(jobs.Job{Type: "complete-past"}); err != nil {
					s.logger.Warn("failed to enqueue sweep", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the tick and drains the workers.
func (s *SweeperService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.queue.Stop()
}

func (s *SweeperService) handle(ctx context.Context, job jobs.Job) error {
	affected, err := s.repo.CompletePast(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected > 0 {
		s.logger.Info("completed past activities", zap.Int64("count", affected))
	}
	return nil
}
