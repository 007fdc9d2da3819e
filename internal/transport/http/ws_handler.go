package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"grid-quiz-service/internal/app"
	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/session"
)

// PlayHandler drives one device's play session over a websocket. Each
// connection owns its own session state; the loop is strictly
// request/response, so there is no cross-client fan-out.
type PlayHandler struct {
	play     *app.PlayService
	upgrader websocket.Upgrader
}

func NewPlayHandler(play *app.PlayService) *PlayHandler {
	return &PlayHandler{
		play: play,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type helloPayload struct {
	DeviceID      string                         `json:"deviceId"`
	QuizID        string                         `json:"quizId"`
	Title         string                         `json:"title"`
	MaxDifficulty int                            `json:"maxDifficulty"`
	Categories    []string                       `json:"categories"`
	Questions     map[string]map[int]domain.Cell `json:"questions"`
}

type statePayload struct {
	Session domain.SessionState `json:"session"`
	Focus   session.Focus       `json:"focus"`
}

type selectPayload struct {
	CategoryID string `json:"categoryId"`
	Difficulty int    `json:"difficulty"`
}

type judgePayload struct {
	Team    int    `json:"team"`
	Verdict string `json:"verdict"`
}

type movePayload struct {
	Direction string `json:"direction"`
}

// ServeWS upgrades the request and runs the session loop: every action
// mutates the explicit state value, persists it, and answers with a
// full snapshot.
func (h *PlayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	quiz, st, err := h.play.Start(r.Context(), quizID, deviceID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("play start failed: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	engine := session.NewEngine(quiz)
	focus := engine.RestoreFocus(&st)

	_ = conn.WriteJSON(outboundMessage[helloPayload]{Type: "hello", Payload: helloPayload{
		DeviceID:      deviceID,
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		MaxDifficulty: quiz.MaxDifficulty,
		Categories:    quiz.Categories,
		Questions:     quiz.Cells,
	}})
	h.sendState(conn, st, focus)

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		var actionErr error
		persist := true
		switch inbound.Type {
		case "select":
			var p selectPayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				h.sendError(conn, "invalid select payload")
				continue
			}
			if actionErr = engine.Select(&st, p.CategoryID, p.Difficulty); actionErr == nil {
				focus = engine.RestoreFocus(&st)
			}
		case "reveal":
			actionErr = engine.Reveal(&st)
		case "judge":
			var p judgePayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				h.sendError(conn, "invalid judge payload")
				continue
			}
			actionErr = engine.ToggleJudge(&st, p.Team, domain.Verdict(p.Verdict))
		case "commit":
			if actionErr = engine.Commit(&st); actionErr == nil {
				focus = engine.RestoreFocus(&st)
			}
		case "move":
			var p movePayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				h.sendError(conn, "invalid move payload")
				continue
			}
			dir, ok := session.ParseDirection(p.Direction)
			if !ok {
				h.sendError(conn, "unknown direction")
				continue
			}
			// Focus movement is view state; nothing to persist.
			focus = engine.Move(&st, focus, dir)
			persist = false
		case "reset":
			st, actionErr = h.play.Reset(ctx, quizID, deviceID)
			focus = session.Focus{}
			persist = false
		default:
			h.sendError(conn, "unsupported message type")
			continue
		}

		if actionErr != nil {
			h.sendError(conn, actionErr.Error())
			continue
		}
		if persist {
			if err := h.play.Save(ctx, quizID, deviceID, st); err != nil {
				log.Printf("session save failed: %v", err)
				h.sendError(conn, "server error")
				continue
			}
		}
		h.sendState(conn, st, focus)
	}
}

func (h *PlayHandler) sendState(conn *websocket.Conn, st domain.SessionState, focus session.Focus) {
	if err := conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: statePayload{
		Session: st,
		Focus:   focus,
	}}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *PlayHandler) sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}
