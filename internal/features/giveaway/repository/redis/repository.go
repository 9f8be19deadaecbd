// Package redis backs the giveaway repository with a Redis instance, for
// deployments that already run one and prefer it over the local JSON file.
// Every document is a JSON string under giveaway:<id>; writes persist
// synchronously, so Flush is a no-op.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const keyPrefixGiveaway = "giveaway:"

type redisRepository struct {
	client *redis.Client
}

func NewRedisGiveawayRepository(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	raw, err := r.client.Get(ctx, makeGiveawayKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
	}

	var g models.Giveaway
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("failed to decode giveaway %s: %w", id, err)
	}
	return &g, nil
}

func (r *redisRepository) Save(ctx context.Context, giveaway *models.Giveaway) error {
	raw, err := json.Marshal(giveaway)
	if err != nil {
		return fmt.Errorf("failed to encode giveaway %s: %w", giveaway.ID, err)
	}
	if err := r.client.Set(ctx, makeGiveawayKey(giveaway.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save giveaway %s: %w", giveaway.ID, err)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, makeGiveawayKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete giveaway %s: %w", id, err)
	}
	return nil
}

func (r *redisRepository) All(ctx context.Context) (map[string]*models.Giveaway, error) {
	out := make(map[string]*models.Giveaway)

	iter := r.client.Scan(ctx, 0, keyPrefixGiveaway+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := strings.TrimPrefix(key, keyPrefixGiveaway)

		raw, err := r.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
		}

		var g models.Giveaway
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, fmt.Errorf("failed to decode giveaway %s: %w", id, err)
		}
		out[id] = &g
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan giveaways: %w", err)
	}
	return out, nil
}

func (r *redisRepository) Flush() error {
	return nil
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}
