package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/metrics"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	"giveaway-bot-backend/internal/utils/random"
)

const presenterTimeout = 10 * time.Second

// giveawayService implements GiveawayService on top of a repository.
//
// Every operation is an independent read-modify-write cycle: load a copy,
// compute the new state, store it. Two concurrent operations on the same id
// can race and the last Save wins; callers wanting strict ordering must
// funnel operations through a single dispatch point.
type giveawayService struct {
	repo      repository.GiveawayRepository
	config    *config.Config
	presenter Presenter // nil when no gateway is configured
}

func NewGiveawayService(repo repository.GiveawayRepository, config *config.Config, presenter Presenter) GiveawayService {
	return &giveawayService{
		repo:      repo,
		config:    config,
		presenter: presenter,
	}
}

func (s *giveawayService) Create(ctx context.Context, input *models.GiveawayCreate) (*models.Giveaway, error) {
	if !s.config.Giveaway.Enabled {
		return nil, ErrDisabled
	}

	seconds, err := models.ParseDuration(input.Duration)
	if err != nil {
		return nil, err
	}
	if seconds < int64(s.config.Giveaway.MinDurationSeconds) {
		return nil, fmt.Errorf("%w: duration must be at least %d seconds",
			models.ErrInvalidDuration, s.config.Giveaway.MinDurationSeconds)
	}

	prize := models.TrimPrize(input.Prize, s.config.Giveaway.MaxPrizeLength)
	if prize == "" {
		return nil, models.ErrEmptyPrize
	}

	winners := input.WinnersCount
	if winners == 0 {
		winners = s.config.Giveaway.DefaultWinners
	}
	winners = models.ClampWinners(winners, s.config.Giveaway.MaxWinners)

	giveaway := &models.Giveaway{
		GuildID:      input.GuildID,
		ChannelID:    input.ChannelID,
		Prize:        prize,
		WinnersCount: winners,
		HostID:       input.HostID,
		EndTime:      time.Now().Unix() + seconds,
		Entries:      []int64{},
		WinnerIDs:    []int64{},
	}

	// The posted-message id becomes the document id. When the gateway is
	// unreachable the giveaway is still created under a generated id; the
	// mutation path never depends on delivery.
	if s.presenter != nil {
		pctx, cancel := context.WithTimeout(ctx, presenterTimeout)
		messageID, pubErr := s.presenter.Publish(pctx, giveaway)
		cancel()
		if pubErr != nil {
			metrics.PresenterErrors.Inc()
			logger.Warn().Err(pubErr).Msg("Failed to publish giveaway message")
		} else {
			giveaway.MessageID = messageID
			giveaway.ID = strconv.FormatInt(messageID, 10)
		}
	}
	if giveaway.ID == "" {
		giveaway.ID = uuid.New().String()
	}

	if err := s.repo.Save(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("failed to save giveaway: %w", err)
	}

	logger.Info().
		Str("giveaway_id", giveaway.ID).
		Int64("host_id", giveaway.HostID).
		Int("winner_count", giveaway.WinnersCount).
		Int64("end_time", giveaway.EndTime).
		Msg("Giveaway created")

	return giveaway, nil
}

func (s *giveawayService) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return giveaway, nil
}

func (s *giveawayService) List(ctx context.Context) ([]*models.Giveaway, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Giveaway, 0, len(all))
	for _, g := range all {
		out = append(out, g)
	}
	return out, nil
}

func (s *giveawayService) ToggleEntry(ctx context.Context, id string, userID int64) (*models.ToggleResult, error) {
	if !s.config.Giveaway.Enabled {
		return nil, ErrDisabled
	}
	if userID <= 0 {
		return nil, models.ErrInvalidUserID
	}

	giveaway, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if giveaway.Ended {
		return nil, models.ErrGiveawayEnded
	}

	joined := !giveaway.HasEntry(userID)
	if joined {
		giveaway.AddEntry(userID)
	} else {
		giveaway.RemoveEntry(userID)
	}

	if err := s.repo.Save(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("failed to save giveaway: %w", err)
	}

	s.refreshAsync(giveaway)

	return &models.ToggleResult{
		GiveawayID: giveaway.ID,
		UserID:     userID,
		Joined:     joined,
		Entries:    len(giveaway.Entries),
	}, nil
}

// End closes the giveaway and draws winners. Ending an unknown id is a safe
// no-op that returns an empty list. Ending an already-ended giveaway
// without force returns the stored winners untouched; with force the
// winners are redrawn but the end timestamps stay as they were.
func (s *giveawayService) End(ctx context.Context, id string, force bool) ([]int64, error) {
	if !s.config.Giveaway.Enabled {
		return nil, ErrDisabled
	}

	giveaway, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []int64{}, nil
		}
		return nil, err
	}

	if giveaway.Ended && !force {
		return giveaway.WinnerIDs, nil
	}

	winners := models.ClampWinners(giveaway.WinnersCount, s.config.Giveaway.MaxWinners)
	winnerIDs, err := random.PickIDs(giveaway.Entries, winners)
	if err != nil {
		return nil, fmt.Errorf("failed to pick winners: %w", err)
	}

	if !giveaway.Ended {
		giveaway.Ended = true
		giveaway.EndedTime = time.Now().Unix()
	}
	giveaway.WinnersCount = winners
	giveaway.WinnerIDs = winnerIDs

	if err := s.repo.Save(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("failed to save giveaway: %w", err)
	}

	logger.Info().
		Str("giveaway_id", giveaway.ID).
		Int("entries", len(giveaway.Entries)).
		Int("winners", len(winnerIDs)).
		Bool("force", force).
		Msg("Giveaway ended")

	s.refreshAsync(giveaway)
	s.announceAsync(giveaway, winnerText(giveaway))

	return winnerIDs, nil
}

// Expire ends the giveaway if it is open and past its end time, and is a
// no-op otherwise. Unknown ids are ignored.
func (s *giveawayService) Expire(ctx context.Context, id string) error {
	giveaway, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !giveaway.Expired(time.Now()) {
		return nil
	}

	_, err = s.End(ctx, id, false)
	return err
}

func (s *giveawayService) Reroll(ctx context.Context, id string, winnersCount int, excludePrevious bool) ([]int64, error) {
	if !s.config.Giveaway.Enabled {
		return nil, ErrDisabled
	}

	giveaway, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !giveaway.Ended {
		return nil, models.ErrGiveawayNotEnded
	}

	if winnersCount == 0 {
		winnersCount = giveaway.WinnersCount
	}
	winnersCount = models.ClampWinners(winnersCount, s.config.Giveaway.MaxWinners)

	candidates := giveaway.Entries
	if excludePrevious && len(giveaway.WinnerIDs) > 0 {
		previous := make(map[int64]struct{}, len(giveaway.WinnerIDs))
		for _, id := range giveaway.WinnerIDs {
			previous[id] = struct{}{}
		}
		candidates = make([]int64, 0, len(giveaway.Entries))
		for _, id := range giveaway.Entries {
			if _, won := previous[id]; !won {
				candidates = append(candidates, id)
			}
		}
	}

	winnerIDs, err := random.PickIDs(candidates, winnersCount)
	if err != nil {
		return nil, fmt.Errorf("failed to pick winners: %w", err)
	}

	// Only the winner list changes on a reroll; the giveaway stays ended
	// and its timestamps stay fixed.
	giveaway.WinnerIDs = winnerIDs

	if err := s.repo.Save(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("failed to save giveaway: %w", err)
	}

	logger.Info().
		Str("giveaway_id", giveaway.ID).
		Int("winners", len(winnerIDs)).
		Bool("exclude_previous", excludePrevious).
		Msg("Giveaway rerolled")

	s.refreshAsync(giveaway)
	s.announceAsync(giveaway, winnerText(giveaway))

	return winnerIDs, nil
}

func (s *giveawayService) Delete(ctx context.Context, id string, requesterID int64) error {
	if !s.config.Giveaway.Enabled {
		return ErrDisabled
	}

	giveaway, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if giveaway.HostID != requesterID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}

// refreshAsync re-renders the posted message in the background. The stored
// state is already saved when this runs, so failures are only logged.
func (s *giveawayService) refreshAsync(giveaway *models.Giveaway) {
	if s.presenter == nil {
		return
	}
	g := *giveaway
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenterTimeout)
		defer cancel()
		if err := s.presenter.Refresh(ctx, &g); err != nil {
			metrics.PresenterErrors.Inc()
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to refresh giveaway message")
		}
	}()
}

func (s *giveawayService) announceAsync(giveaway *models.Giveaway, text string) {
	if s.presenter == nil {
		return
	}
	g := *giveaway
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenterTimeout)
		defer cancel()
		if err := s.presenter.Announce(ctx, &g, text); err != nil {
			metrics.PresenterErrors.Inc()
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to announce giveaway result")
		}
	}()
}

func winnerText(giveaway *models.Giveaway) string {
	if len(giveaway.WinnerIDs) == 0 {
		return fmt.Sprintf("Giveaway ended. No valid entries. | Prize: **%s**", giveaway.Prize)
	}
	mentions := make([]string, len(giveaway.WinnerIDs))
	for i, id := range giveaway.WinnerIDs {
		mentions[i] = fmt.Sprintf("<@%d>", id)
	}
	return fmt.Sprintf("🎉 Giveaway ended! Winners: %s | Prize: **%s**",
		strings.Join(mentions, " "), giveaway.Prize)
}
