package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialPlay(t *testing.T, serverURL, quizID, deviceID string) *websocket.Conn {
	t.Helper()
	u := "ws" + serverURL[len("http"):] + "/ws/play?quizId=" + quizID
	if deviceID != "" {
		u += "&deviceId=" + deviceID
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type sessionSnapshot struct {
	Session struct {
		QuizID    string   `json:"quizId"`
		Scores    []int    `json:"scores"`
		UsedCells []string `json:"usedCells"`
		Current   struct {
			CategoryID string `json:"categoryId"`
			Difficulty int    `json:"difficulty"`
			Phase      string `json:"phase"`
		} `json:"current"`
		Judge []string `json:"judge"`
	} `json:"session"`
	Focus struct {
		Col int `json:"col"`
		Row int `json:"row"`
	} `json:"focus"`
}

func decodeState(t *testing.T, msg wsMessage) sessionSnapshot {
	t.Helper()
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	var snap sessionSnapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return snap
}

func TestPlaySessionOverWebSocket(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	_, created := doJSON(t, http.MethodPost, server.URL+"/api/quizzes", validBody())
	quizID := created["quizId"].(string)

	conn := dialPlay(t, server.URL, quizID, "dev-1")
	defer conn.Close()

	hello := readMessage(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("expected hello, got %s", hello.Type)
	}
	var helloBody struct {
		DeviceID   string   `json:"deviceId"`
		QuizID     string   `json:"quizId"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(hello.Payload, &helloBody); err != nil {
		t.Fatalf("decode hello: %v", err)
	}
	if helloBody.DeviceID != "dev-1" || helloBody.QuizID != quizID {
		t.Fatalf("hello = %+v", helloBody)
	}

	snap := decodeState(t, readMessage(t, conn))
	if snap.Session.Current.Phase != "board" {
		t.Fatalf("initial phase = %s", snap.Session.Current.Phase)
	}

	send(t, conn, "select", map[string]any{"categoryId": "SCI", "difficulty": 200})
	snap = decodeState(t, readMessage(t, conn))
	if snap.Session.Current.Phase != "question" || snap.Session.Current.CategoryID != "SCI" {
		t.Fatalf("after select: %+v", snap.Session.Current)
	}

	send(t, conn, "reveal", nil)
	snap = decodeState(t, readMessage(t, conn))
	if snap.Session.Current.Phase != "answer" {
		t.Fatalf("after reveal: %+v", snap.Session.Current)
	}

	send(t, conn, "judge", map[string]any{"team": 0, "verdict": "correct"})
	snap = decodeState(t, readMessage(t, conn))
	if snap.Session.Judge[0] != "correct" {
		t.Fatalf("judge = %v", snap.Session.Judge)
	}

	send(t, conn, "commit", nil)
	snap = decodeState(t, readMessage(t, conn))
	if snap.Session.Scores[0] != 200 {
		t.Fatalf("scores = %v", snap.Session.Scores)
	}
	if len(snap.Session.UsedCells) != 1 || snap.Session.UsedCells[0] != "SCI|200" {
		t.Fatalf("usedCells = %v", snap.Session.UsedCells)
	}
	if snap.Session.Current.Phase != "board" {
		t.Fatalf("after commit: %+v", snap.Session.Current)
	}

	// Selecting the spent cell again reports an error without closing
	// the connection.
	send(t, conn, "select", map[string]any{"categoryId": "SCI", "difficulty": 200})
	if msg := readMessage(t, conn); msg.Type != "error" {
		t.Fatalf("expected error, got %s", msg.Type)
	}

	// Movement skips the used cell.
	send(t, conn, "move", map[string]any{"direction": "right"})
	snap = decodeState(t, readMessage(t, conn))
	if snap.Focus.Col != 1 {
		t.Fatalf("focus = %+v", snap.Focus)
	}

	send(t, conn, "reset", nil)
	snap = decodeState(t, readMessage(t, conn))
	if snap.Session.Scores[0] != 0 || len(snap.Session.UsedCells) != 0 {
		t.Fatalf("after reset: %+v", snap.Session)
	}
}

func TestPlayStatePersistsAcrossConnections(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	_, created := doJSON(t, http.MethodPost, server.URL+"/api/quizzes", validBody())
	quizID := created["quizId"].(string)

	conn := dialPlay(t, server.URL, quizID, "dev-1")
	readMessage(t, conn) // hello
	readMessage(t, conn) // initial state
	send(t, conn, "select", map[string]any{"categoryId": "ART", "difficulty": 100})
	readMessage(t, conn)
	send(t, conn, "reveal", nil)
	readMessage(t, conn)
	send(t, conn, "judge", map[string]any{"team": 1, "verdict": "incorrect"})
	readMessage(t, conn)
	send(t, conn, "commit", nil)
	readMessage(t, conn)
	conn.Close()

	// Same device reconnects and finds the committed state.
	conn2 := dialPlay(t, server.URL, quizID, "dev-1")
	defer conn2.Close()
	readMessage(t, conn2) // hello
	snap := decodeState(t, readMessage(t, conn2))
	if snap.Session.Scores[1] != -100 || len(snap.Session.UsedCells) != 1 {
		t.Fatalf("state lost: %+v", snap.Session)
	}

	// Another device starts clean.
	conn3 := dialPlay(t, server.URL, quizID, "dev-2")
	defer conn3.Close()
	readMessage(t, conn3)
	snap = decodeState(t, readMessage(t, conn3))
	if snap.Session.Scores[1] != 0 {
		t.Fatalf("device isolation broken: %+v", snap.Session)
	}
}

func TestPlayUnknownQuizRejectedBeforeUpgrade(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/play?quizId=missing-id"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake, got %+v", resp)
	}
}
