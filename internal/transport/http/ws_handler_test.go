package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketLeaderboardFlow(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard?grade=6"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current snapshot first.
	msg := readNext(conn, t, "leaderboard")
	if len(msg.Payload.Entries) != 2 || msg.Payload.Entries[0].TotalScore != 0 {
		t.Fatalf("unexpected initial leaderboard: %+v", msg.Payload)
	}

	body := `{"questions":[{"questionId":"q1","userAnswer":"B"}]}`
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/quizzes/quiz-1/attempts", bytes.NewBufferString(body))
	req.Header.Set(userHeader, "u2")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	msg = readNext(conn, t, "leaderboard")
	if msg.Payload.Entries[0].UserID != "u2" || msg.Payload.Entries[0].TotalScore != 100 {
		t.Fatalf("expected u2 leading, got %+v", msg.Payload.Entries)
	}
}

func TestWebSocketRejectsUnknownGrade(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard?grade=42"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
}

type leaderboardMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Grade   string `json:"grade"`
		Entries []struct {
			UserID     string `json:"userId"`
			TotalScore int    `json:"totalScore"`
		} `json:"entries"`
	} `json:"payload"`
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) leaderboardMessage {
	t.Helper()
	var msg leaderboardMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg
}
