package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"eduplay-service/internal/domain"
)

func dialFeed(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	u := "ws" + ts.srv.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) domain.LeaderboardSnapshot {
	t.Helper()
	var msg struct {
		Type    string                     `json:"type"`
		Payload domain.LeaderboardSnapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}

func TestFeedPushesSnapshotAfterActivity(t *testing.T) {
	ts := newTestServer(t)
	ts.seedGame(t, "Math Blaster", "Math", "Arithmetic", 50)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	conn := dialFeed(t, ts)

	status, _ := ts.request(t, http.MethodPost, "/api/games/results", token, map[string]interface{}{
		"game": "Math Blaster", "score": 40, "timeTaken": 30, "completed": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit result status = %d", status)
	}
	ts.activity.Flush()

	snapshot := readSnapshot(t, conn)
	if len(snapshot.Entries) != 1 {
		t.Fatalf("entries = %v", snapshot.Entries)
	}
	if snapshot.Entries[0].TotalScore != 80 || snapshot.Entries[0].StudentName != "Ada" {
		t.Fatalf("entry = %+v", snapshot.Entries[0])
	}
	if snapshot.UpdatedAt.IsZero() {
		t.Fatalf("snapshot missing timestamp")
	}
}

func TestFeedDeliversCurrentBoardOnConnect(t *testing.T) {
	ts := newTestServer(t)
	ts.seedGame(t, "Math Blaster", "Math", "Arithmetic", 50)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, _ := ts.request(t, http.MethodPost, "/api/games/results", token, map[string]interface{}{
		"game": "Math Blaster", "score": 25, "timeTaken": 30, "completed": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit result status = %d", status)
	}
	ts.activity.Flush()

	// A client that connects after the refresh still gets the latest
	// board immediately.
	conn := dialFeed(t, ts)
	snapshot := readSnapshot(t, conn)
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].TotalScore != 50 {
		t.Fatalf("snapshot = %+v", snapshot)
	}
}

func TestFeedPrimePublishesEmptyBoard(t *testing.T) {
	ts := newTestServer(t)
	ts.leaderboard.Prime(context.Background())

	conn := dialFeed(t, ts)
	snapshot := readSnapshot(t, conn)
	if len(snapshot.Entries) != 0 {
		t.Fatalf("expected empty board, got %+v", snapshot.Entries)
	}
}

func TestFeedSurvivesClientDisconnect(t *testing.T) {
	ts := newTestServer(t)
	ts.seedGame(t, "Math Blaster", "Math", "Arithmetic", 50)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	conn := dialFeed(t, ts)
	_ = conn.Close()

	// Publishing after the client is gone must not wedge the service.
	status, _ := ts.request(t, http.MethodPost, "/api/games/results", token, map[string]interface{}{
		"game": "Math Blaster", "score": 10, "timeTaken": 5, "completed": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit result status = %d", status)
	}
	ts.activity.Flush()

	conn2 := dialFeed(t, ts)
	if snapshot := readSnapshot(t, conn2); len(snapshot.Entries) != 1 {
		t.Fatalf("snapshot after reconnect = %+v", snapshot)
	}
}
