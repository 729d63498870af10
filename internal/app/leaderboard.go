package app

import (
	"context"
	"time"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// LeaderboardStore is the slice of persistence the aggregator needs.
type LeaderboardStore interface {
	StudentByID(ctx context.Context, id int64) (domain.Student, error)
	SessionAggregate(ctx context.Context, studentID int64) (domain.SessionAggregate, error)
	UpsertEntry(ctx context.Context, entry *domain.LeaderboardEntry) error
	EntryFor(ctx context.Context, studentID int64) (domain.LeaderboardEntry, error)
	TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	EntriesByIDs(ctx context.Context, ids []int64) ([]domain.LeaderboardEntry, error)
}

// Boards is the optional redis sorted-set accelerator kept write-through
// with the leaderboard table. A nil Boards leaves ranking entirely to SQL.
type Boards interface {
	SetScore(ctx context.Context, studentID int64, totalScore int) error
	CountBetter(ctx context.Context, totalScore int) (int, error)
	TopIDs(ctx context.Context, limit int) ([]int64, error)
}

// LeaderboardService maintains the denormalized per-student summary rows
// and publishes top-of-board snapshots to the live feed.
type LeaderboardService struct {
	store  LeaderboardStore
	boards Boards
	feed   *Feed
	topN   int
	log    *logger.Logger
	now    func() time.Time
}

func NewLeaderboardService(store LeaderboardStore, boards Boards, feed *Feed, topN int, log *logger.Logger) *LeaderboardService {
	return &LeaderboardService{
		store:  store,
		boards: boards,
		feed:   feed,
		topN:   topN,
		log:    log,
		now:    time.Now,
	}
}

// Refresh rebuilds the student's leaderboard row from scratch out of their
// completed game sessions. The write replaces the whole row, so calling it
// twice with no new activity is a no-op beyond the timestamp. A student
// with no completed sessions gets a zeroed row. The redis board and the
// live feed are updated best-effort after the row is stored.
func (s *LeaderboardService) Refresh(ctx context.Context, studentID int64) error {
	student, err := s.store.StudentByID(ctx, studentID)
	if err != nil {
		return err
	}
	agg, err := s.store.SessionAggregate(ctx, studentID)
	if err != nil {
		return err
	}

	entry := domain.LeaderboardEntry{
		StudentID:    studentID,
		StudentName:  student.Name,
		TotalScore:   agg.TotalScore,
		GamesPlayed:  agg.GamesPlayed,
		AverageScore: agg.AverageScore,
		LastUpdated:  s.now(),
	}
	if err := s.store.UpsertEntry(ctx, &entry); err != nil {
		return err
	}

	if s.boards != nil {
		if err := s.boards.SetScore(ctx, studentID, agg.TotalScore); err != nil {
			s.log.Warn("board score update failed", "student_id", studentID, "err", err)
		}
	}
	s.publish(ctx)
	return nil
}

// Entry returns the stored row for a student.
func (s *LeaderboardService) Entry(ctx context.Context, studentID int64) (domain.LeaderboardEntry, error) {
	return s.store.EntryFor(ctx, studentID)
}

// Top returns the highest-scoring entries. With a redis board configured
// the ordered ids come from the sorted set and the rows are hydrated from
// the store; otherwise the query runs against SQL directly.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if s.boards != nil {
		ids, err := s.boards.TopIDs(ctx, limit)
		if err == nil && len(ids) > 0 {
			entries, err := s.store.EntriesByIDs(ctx, ids)
			if err == nil {
				return entries, nil
			}
			s.log.Warn("board hydrate failed, falling back to sql", "err", err)
		} else if err != nil {
			s.log.Warn("board top query failed, falling back to sql", "err", err)
		}
	}
	return s.store.TopEntries(ctx, limit)
}

// Snapshot assembles the current top-of-board view.
func (s *LeaderboardService) Snapshot(ctx context.Context) (domain.LeaderboardSnapshot, error) {
	entries, err := s.Top(ctx, s.topN)
	if err != nil {
		return domain.LeaderboardSnapshot{}, err
	}
	return domain.LeaderboardSnapshot{Entries: entries, UpdatedAt: s.now()}, nil
}

// Subscribe attaches a live-feed consumer. See Feed.Subscribe.
func (s *LeaderboardService) Subscribe() (<-chan domain.LeaderboardSnapshot, func()) {
	return s.feed.Subscribe()
}

// Prime publishes the current snapshot so subscribers that connect before
// any fresh activity still receive an initial board. Called at startup.
func (s *LeaderboardService) Prime(ctx context.Context) {
	s.publish(ctx)
}

func (s *LeaderboardService) publish(ctx context.Context) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Warn("leaderboard snapshot failed", "err", err)
		return
	}
	s.feed.Publish(snapshot)
}
