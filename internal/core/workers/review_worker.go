package workers

import (
	"context"
	"log"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

type ProgramRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Program, error)
	UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error
}

type DecisionRepository interface {
	ListByProgramID(ctx context.Context, programID string, limit int) ([]*domain.AdjustmentDecision, error)
}

type ReviewJob struct {
	ProgramID string
}

// ReviewWorker maintains the per-program review bookkeeping (weeks on
// track, consecutive plateau weeks, last reviewed week) after each stored
// decision. A single goroutine drains the queue, so bookkeeping writes for
// a program never race each other.
type ReviewWorker struct {
	programRepo  ProgramRepository
	decisionRepo DecisionRepository
	jobs         chan ReviewJob
}

func NewReviewWorker(pRepo ProgramRepository, dRepo DecisionRepository) *ReviewWorker {
	return &ReviewWorker{
		programRepo:  pRepo,
		decisionRepo: dRepo,
		jobs:         make(chan ReviewJob, 100),
	}
}

func (w *ReviewWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Review Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Review Worker shutting down...")
				return
			}
		}
	}()
}

func (w *ReviewWorker) Enqueue(programID string) {
	select {
	case w.jobs <- ReviewJob{ProgramID: programID}:
	default:
		log.Printf("Review Worker queue full! Dropping job for program %s", programID)
	}
}

func (w *ReviewWorker) processJob(ctx context.Context, job ReviewJob) {
	program, err := w.programRepo.GetByID(ctx, job.ProgramID)
	if err != nil {
		log.Printf("Worker Error fetching program %s: %v", job.ProgramID, err)
		return
	}

	decisions, err := w.decisionRepo.ListByProgramID(ctx, job.ProgramID, 12)
	if err != nil {
		log.Printf("Worker Error fetching decisions for %s: %v", job.ProgramID, err)
		return
	}
	if len(decisions) == 0 {
		return
	}

	onTrack, plateau := reviewStreaks(decisions)
	latest := decisions[0]

	if program.WeeksOnTrack != onTrack || program.PlateauWeeks != plateau || program.LastReviewedWeek != latest.Week {
		stats := domain.ReviewStats{
			WeeksOnTrack:     onTrack,
			PlateauWeeks:     plateau,
			LastReviewedWeek: latest.Week,
			LastReviewedAt:   latest.CreatedAt,
		}

		if err := w.programRepo.UpdateReviewStats(ctx, job.ProgramID, stats); err != nil {
			log.Printf("Worker Failed to update review stats for %s: %v", job.ProgramID, err)
		} else {
			log.Printf("Review stats updated for %s: OnTrack=%d, Plateau=%d, Week=%d", program.Title, onTrack, plateau, latest.Week)
		}
	}
}

// reviewStreaks counts, from the most recent decision backwards, how many
// consecutive weeks were on track and how many were plateau interventions
// (step nudges or calorie cuts). Decisions are expected most recent first.
func reviewStreaks(decisions []*domain.AdjustmentDecision) (onTrack, plateau int) {
	for _, d := range decisions {
		if d.RationaleCode != domain.RationaleOnTrack {
			break
		}
		onTrack++
	}

	for _, d := range decisions {
		if d.RationaleCode != domain.RationaleStepIncrease && d.RationaleCode != domain.RationaleCalorieReduction {
			break
		}
		plateau++
	}

	return onTrack, plateau
}
