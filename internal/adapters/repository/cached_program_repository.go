package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

var _ domain.ProgramRepository = (*CachedProgramRepository)(nil)

type CachedProgramRepository struct {
	next  domain.ProgramRepository
	cache *redis.Client
}

func NewCachedProgramRepository(next domain.ProgramRepository, cache *redis.Client) *CachedProgramRepository {
	return &CachedProgramRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedProgramRepository) cacheKey(userID string) string {
	return fmt.Sprintf("programs:%s", userID)
}

func (r *CachedProgramRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (r *CachedProgramRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Program, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var programs []*domain.Program
		if err := json.Unmarshal([]byte(val), &programs); err == nil {
			return programs, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	programs, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(programs); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return programs, nil
}

func (r *CachedProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	if err := r.next.Create(ctx, program); err != nil {
		return err
	}
	r.invalidate(ctx, program.UserID)
	return nil
}

func (r *CachedProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	if err := r.next.Update(ctx, program); err != nil {
		return err
	}
	r.invalidate(ctx, program.UserID)
	return nil
}

func (r *CachedProgramRepository) UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error {
	program, err := r.next.GetByID(ctx, programID)
	if err == nil && program != nil {
		defer r.invalidate(ctx, program.UserID)
	}

	return r.next.UpdateReviewStats(ctx, programID, stats)
}

func (r *CachedProgramRepository) Delete(ctx context.Context, id string) error {
	program, err := r.next.GetByID(ctx, id)
	if err == nil && program != nil {
		defer r.invalidate(ctx, program.UserID)
	}

	return r.next.Delete(ctx, id)
}
