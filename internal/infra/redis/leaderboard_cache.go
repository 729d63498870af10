package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"eduplay-service/internal/domain"
)

// scoreKey is the ZSet holding total scores keyed by student id.
const scoreKey = "leaderboard:score"

// LeaderboardCache mirrors the leaderboard table into a Redis sorted set
// so rank and top-N queries run in Redis instead of SQL. Writes go through
// the aggregator after every refresh; the SQL table stays the source of
// truth and the set can be rebuilt from it at any time.
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// SetScore records the student's current total score.
func (c *LeaderboardCache) SetScore(ctx context.Context, studentID int64, totalScore int) error {
	return c.client.ZAdd(ctx, scoreKey, redis.Z{
		Score:  float64(totalScore),
		Member: strconv.FormatInt(studentID, 10),
	}).Err()
}

// CountBetter counts students with a total score strictly greater than the
// given one. One plus this count is the global rank, so tied totals share
// a rank.
func (c *LeaderboardCache) CountBetter(ctx context.Context, totalScore int) (int, error) {
	n, err := c.client.ZCount(ctx, scoreKey, "("+strconv.Itoa(totalScore), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// TopIDs returns up to limit student ids ordered by total score, highest
// first.
func (c *LeaderboardCache) TopIDs(ctx context.Context, limit int) ([]int64, error) {
	members, err := c.client.ZRevRange(ctx, scoreKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Rebuild replaces the sorted set with the given rows in one round-trip.
// Called at startup so the board is warm after a restart.
func (c *LeaderboardCache) Rebuild(ctx context.Context, entries []domain.LeaderboardEntry) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, scoreKey)
	for _, e := range entries {
		pipe.ZAdd(ctx, scoreKey, redis.Z{
			Score:  float64(e.TotalScore),
			Member: strconv.FormatInt(e.StudentID, 10),
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}
