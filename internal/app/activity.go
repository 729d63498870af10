package app

import (
	"context"
	"sync"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// ActivityStore is the slice of persistence the orchestrator needs.
type ActivityStore interface {
	InsertSession(ctx context.Context, session *domain.GameSession) error
}

// ActivityService is the single entry point after any scored activity. It
// persists the immutable record first, then runs the progress, streak, and
// leaderboard updates as one background task per activity. Tasks for the
// same student are serialized through a per-student lock so two concurrent
// submissions cannot interleave their read-modify-write cycles; failures
// inside a task are logged and never surface to the request that caused
// them.
type ActivityService struct {
	store       ActivityStore
	progress    *ProgressService
	streaks     *StreakService
	leaderboard *LeaderboardService
	log         *logger.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
	wg    sync.WaitGroup
}

func NewActivityService(store ActivityStore, progress *ProgressService, streaks *StreakService, leaderboard *LeaderboardService, log *logger.Logger) *ActivityService {
	return &ActivityService{
		store:       store,
		progress:    progress,
		streaks:     streaks,
		leaderboard: leaderboard,
		log:         log,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// RecordGameResult appends the immutable session row and schedules the
// update chain. The session insert is the primary write: its failure fails
// the request, while the chained updates run after the response.
func (s *ActivityService) RecordGameResult(ctx context.Context, session *domain.GameSession, subject, topic string) error {
	if err := s.store.InsertSession(ctx, session); err != nil {
		return err
	}
	s.enqueue(session.StudentID, subject, topic, session.Score)
	return nil
}

// RecordQuizActivity schedules the update chain for a graded quiz. The
// attempt itself is already persisted by the grader.
func (s *ActivityService) RecordQuizActivity(studentID int64, subject string, normalizedScore int) {
	s.enqueue(studentID, subject, "Quiz", normalizedScore)
}

// TouchStreak runs the login-path streak update synchronously, under the
// same per-student lock the background chains use.
func (s *ActivityService) TouchStreak(ctx context.Context, studentID int64) (current, longest int, err error) {
	lock := s.lockFor(studentID)
	lock.Lock()
	defer lock.Unlock()
	return s.streaks.Touch(ctx, studentID)
}

// Flush blocks until every scheduled chain has finished. Used on shutdown
// and by tests that need to observe chain effects.
func (s *ActivityService) Flush() {
	s.wg.Wait()
}

// enqueue runs the progress, streak, and leaderboard updates for one
// activity in the background. Each step is attempted even when an earlier
// one fails; a failed step only logs.
func (s *ActivityService) enqueue(studentID int64, subject, topic string, score int) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		lock := s.lockFor(studentID)
		lock.Lock()
		defer lock.Unlock()

		// The request that queued this chain has already returned, so the
		// chain runs on its own context.
		ctx := context.Background()
		if err := s.progress.RecordActivity(ctx, studentID, subject, topic, score); err != nil {
			s.log.Error("progress update failed", "student_id", studentID, "subject", subject, "topic", topic, "err", err)
		}
		if _, _, err := s.streaks.Touch(ctx, studentID); err != nil {
			s.log.Error("streak update failed", "student_id", studentID, "err", err)
		}
		if err := s.leaderboard.Refresh(ctx, studentID); err != nil {
			s.log.Error("leaderboard refresh failed", "student_id", studentID, "err", err)
		}
	}()
}

func (s *ActivityService) lockFor(studentID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[studentID] = lock
	}
	return lock
}
