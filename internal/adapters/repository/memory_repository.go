package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.store[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type InMemoryProgramRepository struct {
	store map[string]*domain.Program

	mu sync.RWMutex
}

func NewInMemoryProgramRepository() *InMemoryProgramRepository {
	return &InMemoryProgramRepository{
		store: make(map[string]*domain.Program),
	}
}

func (r *InMemoryProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[program.ID] = program
	return nil
}

func (r *InMemoryProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	program, ok := r.store[id]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	return program, nil
}

func (r *InMemoryProgramRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var programs []*domain.Program
	for _, p := range r.store {
		if p.UserID == userID {
			programs = append(programs, p)
		}
	}

	sort.Slice(programs, func(i, j int) bool {
		return programs[i].CreatedAt.After(programs[j].CreatedAt)
	})

	return programs, nil
}

func (r *InMemoryProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[program.ID]; !ok {
		return domain.ErrProgramNotFound
	}
	r.store[program.ID] = program
	return nil
}

func (r *InMemoryProgramRepository) UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	program, ok := r.store[programID]
	if !ok {
		return domain.ErrProgramNotFound
	}
	program.WeeksOnTrack = stats.WeeksOnTrack
	program.PlateauWeeks = stats.PlateauWeeks
	program.LastReviewedWeek = stats.LastReviewedWeek
	reviewedAt := stats.LastReviewedAt
	program.LastReviewedAt = &reviewedAt
	return nil
}

func (r *InMemoryProgramRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrProgramNotFound
	}
	delete(r.store, id)
	return nil
}

type InMemoryCheckInRepository struct {
	store map[string]*domain.CheckIn

	mu sync.RWMutex
}

func NewInMemoryCheckInRepository() *InMemoryCheckInRepository {
	return &InMemoryCheckInRepository{
		store: make(map[string]*domain.CheckIn),
	}
}

func (r *InMemoryCheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.store {
		if c.ProgramID == checkIn.ProgramID && c.Week == checkIn.Week {
			return domain.ErrCheckInWeekExists
		}
	}

	if checkIn.ID == "" {
		checkIn.ID = uuid.NewString()
	}
	r.store[checkIn.ID] = checkIn
	return nil
}

func (r *InMemoryCheckInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checkIn, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCheckInNotFound
	}
	return checkIn, nil
}

func (r *InMemoryCheckInRepository) ListByProgramID(ctx context.Context, programID string, fromWeek, toWeek int) ([]*domain.CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var checkIns []*domain.CheckIn
	for _, c := range r.store {
		if c.ProgramID == programID && c.Week >= fromWeek && c.Week <= toWeek {
			checkIns = append(checkIns, c)
		}
	}

	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Week > checkIns[j].Week
	})

	return checkIns, nil
}

func (r *InMemoryCheckInRepository) Latest(ctx context.Context, programID string) (*domain.CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.CheckIn
	for _, c := range r.store {
		if c.ProgramID != programID {
			continue
		}
		if latest == nil || c.Week > latest.Week {
			latest = c
		}
	}

	if latest == nil {
		return nil, domain.ErrCheckInNotFound
	}
	return latest, nil
}

type InMemoryDecisionRepository struct {
	store map[string]*domain.AdjustmentDecision

	mu sync.RWMutex
}

func NewInMemoryDecisionRepository() *InMemoryDecisionRepository {
	return &InMemoryDecisionRepository{
		store: make(map[string]*domain.AdjustmentDecision),
	}
}

func (r *InMemoryDecisionRepository) Create(ctx context.Context, decision *domain.AdjustmentDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	r.store[decision.ID] = decision
	return nil
}

func (r *InMemoryDecisionRepository) GetByID(ctx context.Context, id string) (*domain.AdjustmentDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decision, ok := r.store[id]
	if !ok {
		return nil, domain.ErrDecisionNotFound
	}
	return decision, nil
}

func (r *InMemoryDecisionRepository) ListByProgramID(ctx context.Context, programID string, limit int) ([]*domain.AdjustmentDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var decisions []*domain.AdjustmentDecision
	for _, d := range r.store {
		if d.ProgramID == programID {
			decisions = append(decisions, d)
		}
	}

	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].Week > decisions[j].Week
	})

	if limit > 0 && len(decisions) > limit {
		decisions = decisions[:limit]
	}

	return decisions, nil
}

func (r *InMemoryDecisionRepository) Latest(ctx context.Context, programID string) (*domain.AdjustmentDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.AdjustmentDecision
	for _, d := range r.store {
		if d.ProgramID != programID {
			continue
		}
		if latest == nil || d.Week > latest.Week {
			latest = d
		}
	}

	if latest == nil {
		return nil, domain.ErrDecisionNotFound
	}
	return latest, nil
}
