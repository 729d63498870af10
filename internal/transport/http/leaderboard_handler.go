package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
)

const maxLeaderboardLimit = 100

// LeaderboardHandler serves the global top-N board and the caller's own
// placement.
type LeaderboardHandler struct {
	leaderboard *app.LeaderboardService
	ranking     *app.RankingService
	defaultSize int
}

func NewLeaderboardHandler(leaderboard *app.LeaderboardService, ranking *app.RankingService, defaultSize int) *LeaderboardHandler {
	if defaultSize <= 0 {
		defaultSize = 10
	}
	return &LeaderboardHandler{leaderboard: leaderboard, ranking: ranking, defaultSize: defaultSize}
}

func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit := queryInt(c, "limit", h.defaultSize)
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	entries, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Me returns the caller's leaderboard entry and global rank; 404 until
// the student has a completed session on the board.
func (h *LeaderboardHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	entry, err := h.leaderboard.Entry(ctx, accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	rank, err := h.ranking.GlobalRank(ctx, accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "rank": rank})
}
