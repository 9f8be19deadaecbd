package service

import (
	"context"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

// GiveawayService owns the campaign state machine: creation, entry
// toggling, timed and forced ending, and winner rerolls.
type GiveawayService interface {
	Create(ctx context.Context, input *models.GiveawayCreate) (*models.Giveaway, error)
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	List(ctx context.Context) ([]*models.Giveaway, error)
	ToggleEntry(ctx context.Context, id string, userID int64) (*models.ToggleResult, error)
	End(ctx context.Context, id string, force bool) ([]int64, error)
	Expire(ctx context.Context, id string) error
	Reroll(ctx context.Context, id string, winnersCount int, excludePrevious bool) ([]int64, error)
	Delete(ctx context.Context, id string, requesterID int64) error
}

// Presenter renders giveaway state outward (the posted chat message). All
// calls are best-effort from the engine's point of view: a failed refresh
// never rolls back a stored mutation.
type Presenter interface {
	// Publish posts a new giveaway and returns the posted-message id,
	// which becomes the giveaway's identifier.
	Publish(ctx context.Context, giveaway *models.Giveaway) (int64, error)
	// Refresh re-renders the posted message from current state.
	Refresh(ctx context.Context, giveaway *models.Giveaway) error
	// Announce posts a free-standing message, e.g. the winner list.
	Announce(ctx context.Context, giveaway *models.Giveaway, text string) error
}
