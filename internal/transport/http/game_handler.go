package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
)

// GameHandler serves the game catalog, result submission, and per-game
// rankings.
type GameHandler struct {
	accounts *app.AccountService
	games    *app.GameService
	ranking  *app.RankingService
}

func NewGameHandler(accounts *app.AccountService, games *app.GameService, ranking *app.RankingService) *GameHandler {
	return &GameHandler{accounts: accounts, games: games, ranking: ranking}
}

type gameResultRequest struct {
	Game      string  `json:"game" binding:"required"`
	Score     float64 `json:"score"`
	TimeTaken int     `json:"timeTaken" binding:"gte=0"`
	Completed bool    `json:"completed"`
}

// List returns the games playable at the student's grade.
func (h *GameHandler) List(c *gin.Context) {
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	games, err := h.games.List(c.Request.Context(), student.Grade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// SubmitResult records a finished game round. The response carries the
// normalized 0-100 score; progress, streak, and leaderboard catch up in
// the background.
func (h *GameHandler) SubmitResult(c *gin.Context) {
	var req gameResultRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.games.SubmitResult(c.Request.Context(), accountID(c), app.GameResult{
		Game:      req.Game,
		Score:     req.Score,
		TimeTaken: req.TimeTaken,
		Completed: req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":       session.ID,
		"normalizedScore": session.Score,
		"completed":       session.Completed,
	})
}

// Rankings returns the best-score table for one game.
func (h *GameHandler) Rankings(c *gin.Context) {
	gameID, ok := paramID(c, "id")
	if !ok {
		return
	}
	rankings, err := h.ranking.GameRank(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings})
}
