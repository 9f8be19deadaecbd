// Package json backs the giveaway repository with the local durable
// document store. This is the default backend: one JSON file, in-memory
// authority, debounced atomic flushes.
package json

import (
	"context"
	"time"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	"giveaway-bot-backend/internal/platform/jsonstore"
)

type jsonRepository struct {
	store *jsonstore.Store[models.Giveaway]
}

// NewJSONGiveawayRepository opens the store file at path. A missing or
// corrupt file yields an empty repository rather than an error.
func NewJSONGiveawayRepository(path string, flushDebounce time.Duration) (repository.GiveawayRepository, error) {
	store, err := jsonstore.Open[models.Giveaway](path, flushDebounce)
	if err != nil {
		return nil, err
	}
	return &jsonRepository{store: store}, nil
}

func (r *jsonRepository) GetByID(_ context.Context, id string) (*models.Giveaway, error) {
	g, ok := r.store.Get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *jsonRepository) Save(_ context.Context, giveaway *models.Giveaway) error {
	return r.store.Set(giveaway.ID, *giveaway)
}

func (r *jsonRepository) Delete(_ context.Context, id string) error {
	return r.store.Delete(id)
}

func (r *jsonRepository) All(_ context.Context) (map[string]*models.Giveaway, error) {
	docs := r.store.All()
	out := make(map[string]*models.Giveaway, len(docs))
	for id := range docs {
		g := docs[id]
		out[id] = &g
	}
	return out, nil
}

func (r *jsonRepository) Flush() error {
	return r.store.Flush()
}

func (r *jsonRepository) Close() error {
	return r.store.Close()
}
