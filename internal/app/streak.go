package app

import (
	"context"
	"time"

	"eduplay-service/internal/domain"
)

// StreakStore is the slice of persistence the streak tracker needs.
type StreakStore interface {
	StreakFor(ctx context.Context, studentID int64) (domain.Streak, error)
	UpsertStreak(ctx context.Context, st *domain.Streak) error
}

// StreakService maintains per-student consecutive-day activity streaks.
// Days are calendar dates in UTC; the time of day never matters.
type StreakService struct {
	store StreakStore
	now   func() time.Time
}

func NewStreakService(store StreakStore) *StreakService {
	return NewStreakServiceWithClock(store, time.Now)
}

// NewStreakServiceWithClock is test-only for deterministic dates.
func NewStreakServiceWithClock(store StreakStore, now func() time.Time) *StreakService {
	return &StreakService{store: store, now: now}
}

// Touch records qualifying activity for today and returns the resulting
// current and longest streaks. A first-ever touch starts the streak at 1,
// a touch the day after the last one extends it, a gap of more than one
// day resets it to 1. Repeat touches on the same day leave the streak
// as-is, and a last-activity date in the future (clock skew) is left
// untouched entirely so the stored date never regresses.
func (s *StreakService) Touch(ctx context.Context, studentID int64) (current, longest int, err error) {
	st, err := s.store.StreakFor(ctx, studentID)
	if err != nil {
		return 0, 0, err
	}

	today := dateOf(s.now())
	if st.LastActivityDate != nil {
		switch diff := daysBetween(dateOf(*st.LastActivityDate), today); {
		case diff == 0:
			return st.CurrentStreak, st.LongestStreak, nil
		case diff == 1:
			st.CurrentStreak++
		case diff > 1:
			st.CurrentStreak = 1
		default: // diff < 0
			return st.CurrentStreak, st.LongestStreak, nil
		}
	} else {
		st.CurrentStreak = 1
	}

	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastActivityDate = &today

	if err := s.store.UpsertStreak(ctx, &st); err != nil {
		return 0, 0, err
	}
	return st.CurrentStreak, st.LongestStreak, nil
}

// Current returns the stored streak without touching it.
func (s *StreakService) Current(ctx context.Context, studentID int64) (domain.Streak, error) {
	return s.store.StreakFor(ctx, studentID)
}

// dateOf strips the time of day, leaving a UTC midnight timestamp.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day distance from a to b. Both arguments
// must be UTC midnights, which makes the division exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
