package app

import (
	"context"
	"errors"
	"time"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
	"eduplay-service/internal/scoring"
)

// ProgressStore is the slice of persistence the progress tracker needs.
type ProgressStore interface {
	StudentByID(ctx context.Context, id int64) (domain.Student, error)
	ProgressFor(ctx context.Context, studentID int64, subject, topic string) (domain.Progress, error)
	UpsertProgress(ctx context.Context, p *domain.Progress) error
	ListProgress(ctx context.Context, studentID int64, subject string) ([]domain.Progress, error)
}

// ProgressService maintains the rolling per-(student, subject, topic)
// engagement record.
type ProgressService struct {
	store ProgressStore
	log   *logger.Logger
	now   func() time.Time
}

func NewProgressService(store ProgressStore, log *logger.Logger) *ProgressService {
	return &ProgressService{store: store, log: log, now: time.Now}
}

// RecordActivity folds one scored activity into the progress row for the
// key, creating the row on first activity. Completion advances by a fixed
// step per activity and caps at 100; the average is recomputed from the
// previous rounded average, not from the stored total. An unresolvable
// student is a silent no-op, not an error.
func (s *ProgressService) RecordActivity(ctx context.Context, studentID int64, subject, topic string, normalizedScore int) error {
	if _, err := s.store.StudentByID(ctx, studentID); err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			s.log.Warn("progress update skipped, unknown student", "student_id", studentID)
			return nil
		}
		return err
	}

	p, err := s.store.ProgressFor(ctx, studentID, subject, topic)
	if err != nil {
		return err
	}

	p.CompletionPercentage = scoring.AdvanceCompletion(p.CompletionPercentage)
	p.GamesPlayed++
	p.TotalScore += normalizedScore
	p.AverageScore = scoring.RollingAverage(p.AverageScore, p.GamesPlayed, normalizedScore)
	p.LastPlayed = s.now()

	return s.store.UpsertProgress(ctx, &p)
}

// List returns a student's progress rows, optionally filtered by subject.
func (s *ProgressService) List(ctx context.Context, studentID int64, subject string) ([]domain.Progress, error) {
	return s.store.ListProgress(ctx, studentID, subject)
}
