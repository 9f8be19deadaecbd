package service

import (
	"context"
	"sync"
	"time"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/metrics"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

// ExpirationService periodically scans all stored giveaways and ends the
// ones whose time has passed. A giveaway already expired at startup is
// picked up by the first tick, so reconciliation after a restart is bounded
// by one tick interval.
type ExpirationService struct {
	ctx    context.Context
	cancel context.CancelFunc
	svc    GiveawayService
	repo   repository.GiveawayRepository
	config *config.Config
	wg     sync.WaitGroup
}

func NewExpirationService(svc GiveawayService, repo repository.GiveawayRepository, config *config.Config) *ExpirationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpirationService{
		ctx:    ctx,
		cancel: cancel,
		svc:    svc,
		repo:   repo,
		config: config,
	}
}

func (s *ExpirationService) Start() {
	logger.Info().
		Int("tick_seconds", s.config.Giveaway.TickSeconds).
		Msg("Starting expiration service")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.config.TickInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick(s.ctx)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *ExpirationService) Stop() {
	logger.Info().Msg("Stopping expiration service")
	s.cancel()
	s.wg.Wait()
	logger.Info().Msg("Expiration service stopped")
}

// Tick runs one expiry scan. Failures are isolated per giveaway: one bad
// document never blocks the rest of the scan.
func (s *ExpirationService) Tick(ctx context.Context) {
	if !s.config.Giveaway.Enabled {
		return
	}

	start := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
	}()

	all, err := s.repo.All(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to enumerate giveaways")
		return
	}

	now := time.Now()
	for id, giveaway := range all {
		if !giveaway.Expired(now) {
			continue
		}
		if err := s.svc.Expire(ctx, id); err != nil {
			metrics.SchedulerItemErrors.Inc()
			logger.Error().Err(err).Str("giveaway_id", id).Msg("Failed to expire giveaway")
			continue
		}
		metrics.GiveawaysExpired.Inc()
	}
}
