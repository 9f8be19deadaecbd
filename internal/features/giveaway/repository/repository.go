package repository

import (
	"context"
	"errors"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

// ErrNotFound is returned when no giveaway exists under the requested id.
var ErrNotFound = errors.New("giveaway not found")

// GiveawayRepository persists giveaway documents keyed by their id.
//
// Implementations hand out copies: mutating a returned giveaway has no
// effect until it is passed back through Save. Save replaces the stored
// document unconditionally (last writer wins).
type GiveawayRepository interface {
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	Save(ctx context.Context, giveaway *models.Giveaway) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) (map[string]*models.Giveaway, error)

	// Flush forces pending writes to durable storage. A no-op for backends
	// that persist synchronously.
	Flush() error
	Close() error
}
