package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"grid-quiz-service/internal/app"
	"grid-quiz-service/internal/domain"
)

// APIHandler exposes the authoring API over JSON.
type APIHandler struct {
	quizzes *app.QuizService
}

func NewAPIHandler(quizzes *app.QuizService) *APIHandler {
	return &APIHandler{quizzes: quizzes}
}

// quizPayload is the wire shape shared by create and replace. Question
// keys arrive as JSON object keys, so difficulties are strings here.
type quizPayload struct {
	Title         string                            `json:"title"`
	Categories    []string                          `json:"categories"`
	MaxDifficulty int                               `json:"maxDifficulty"`
	Questions     map[string]map[string]domain.Cell `json:"questions"`
}

func (p quizPayload) toInput() app.QuizInput {
	in := app.QuizInput{
		Title:         p.Title,
		Categories:    p.Categories,
		MaxDifficulty: p.MaxDifficulty,
		Cells:         make(map[string]map[int]domain.Cell, len(p.Questions)),
	}
	for cat, byDiff := range p.Questions {
		cells := make(map[int]domain.Cell, len(byDiff))
		for key, cell := range byDiff {
			d, err := strconv.Atoi(key)
			if err != nil {
				// Unparsable keys surface later as missing cells.
				continue
			}
			cells[d] = cell
		}
		in.Cells[cat] = cells
	}
	return in
}

type createdResponse struct {
	QuizID  string `json:"quizId"`
	PlayURL string `json:"playUrl"`
}

type quizResponse struct {
	QuizID        string                         `json:"quizId"`
	Title         string                         `json:"title"`
	MaxDifficulty int                            `json:"maxDifficulty"`
	Categories    []string                       `json:"categories"`
	Questions     map[string]map[int]domain.Cell `json:"questions"`
}

func (h *APIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload quizPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	quizID, err := h.quizzes.Create(r.Context(), payload.toInput())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{QuizID: quizID, PlayURL: "/play/" + quizID})
}

func (h *APIHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Fetch(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		MaxDifficulty: quiz.MaxDifficulty,
		Categories:    quiz.Categories,
		Questions:     quiz.Cells,
	})
}

func (h *APIHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var payload quizPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.quizzes.Replace(r.Context(), chi.URLParam(r, "quizID"), payload.toInput()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *APIHandler) Clone(w http.ResponseWriter, r *http.Request) {
	quizID, err := h.quizzes.Clone(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{QuizID: quizID, PlayURL: "/play/" + quizID})
}

func (h *APIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps service errors onto the API's taxonomy. Storage
// failures are logged but never leak detail to the caller.
func writeFailure(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
