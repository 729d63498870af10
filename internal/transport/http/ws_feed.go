package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eduplay-service/internal/app"
	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// FeedHandler streams leaderboard snapshots over a websocket. The stream
// is push-only: client frames are read solely to detect disconnects.
type FeedHandler struct {
	leaderboard *app.LeaderboardService
	log         *logger.Logger
	upgrader    websocket.Upgrader
}

func NewFeedHandler(leaderboard *app.LeaderboardService, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		leaderboard: leaderboard,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type feedMessage struct {
	Type    string                     `json:"type"`
	Payload domain.LeaderboardSnapshot `json:"payload"`
}

// ServeFeed upgrades the request and forwards snapshots until the client
// disconnects. A dedicated writer goroutine owns the connection's write
// side so the pump and the shutdown path never write concurrently.
func (h *FeedHandler) ServeFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.leaderboard.Subscribe()
	defer cancel()

	send := make(chan feedMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- feedMessage{Type: "leaderboard", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
