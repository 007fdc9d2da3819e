package session

import (
	"encoding/json"

	"grid-quiz-service/internal/domain"
)

// persistedState tolerates arbitrary junk in every field so repair can
// proceed field by field.
type persistedState struct {
	QuizID          string          `json:"quizId"`
	Scores          json.RawMessage `json:"scores"`
	UsedCells       json.RawMessage `json:"usedCells"`
	Current         json.RawMessage `json:"current"`
	Judge           json.RawMessage `json:"judge"`
	LastFocusedCell json.RawMessage `json:"lastFocusedCell"`
	UpdatedAt       int64           `json:"updatedAt"`
	Version         int             `json:"version"`
}

// RepairJSON turns whatever was persisted under a session key into a
// usable state. Missing, malformed or foreign-quiz documents become the
// default state; partial corruption is repaired per field. It never
// fails.
func RepairJSON(quizID string, raw []byte) domain.SessionState {
	if len(raw) == 0 {
		return Default(quizID)
	}
	var p persistedState
	if err := json.Unmarshal(raw, &p); err != nil {
		return Default(quizID)
	}
	if p.QuizID != quizID || p.Version != domain.SessionVersion {
		return Default(quizID)
	}

	st := Default(quizID)
	st.UpdatedAt = p.UpdatedAt

	var scores []int
	if err := json.Unmarshal(p.Scores, &scores); err == nil && len(scores) == domain.NumTeams {
		st.Scores = scores
	}

	var used []string
	if err := json.Unmarshal(p.UsedCells, &used); err == nil && used != nil {
		st.UsedCells = used
	}

	var cur domain.Selection
	if err := json.Unmarshal(p.Current, &cur); err == nil && domain.ValidPhase(cur.Phase) {
		// A question/answer phase without an open cell is unusable;
		// fall back to the board.
		if cur.Phase == domain.PhaseBoard || !cur.Empty() {
			st.Current = cur
		}
	}

	var judge []domain.Verdict
	if err := json.Unmarshal(p.Judge, &judge); err == nil && len(judge) == domain.NumTeams {
		ok := true
		for _, v := range judge {
			if !domain.ValidVerdict(v) {
				ok = false
				break
			}
		}
		if ok {
			copy(st.Judge[:], judge)
		}
	}

	var lf *domain.CellRef
	if err := json.Unmarshal(p.LastFocusedCell, &lf); err == nil && lf != nil && lf.CategoryID != "" {
		st.LastFocusedCell = lf
	}

	return st
}
