package domain

import "fmt"

// NumTeams is the fixed number of team slots on the scoreboard.
const NumTeams = 5

// SessionVersion tags the persisted session schema for repair.
const SessionVersion = 1

// Phase is the session's current view state.
type Phase string

const (
	PhaseBoard    Phase = "board"
	PhaseQuestion Phase = "question"
	PhaseAnswer   Phase = "answer"
)

// ValidPhase reports whether p is one of the three known phases.
func ValidPhase(p Phase) bool {
	return p == PhaseBoard || p == PhaseQuestion || p == PhaseAnswer
}

// Verdict is the per-team judge mark for the currently open cell.
type Verdict string

const (
	VerdictUnset     Verdict = ""
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// ValidVerdict reports whether v is a known verdict.
func ValidVerdict(v Verdict) bool {
	return v == VerdictUnset || v == VerdictCorrect || v == VerdictIncorrect
}

// CellRef names one cell by category and difficulty.
type CellRef struct {
	CategoryID string `json:"categoryId"`
	Difficulty int    `json:"difficulty"`
}

// Key returns the used-cell set key for the referenced cell.
func (c CellRef) Key() string { return CellKey(c.CategoryID, c.Difficulty) }

// CellKey builds the "category|difficulty" key stored in UsedCells.
// "|" keeps keys unambiguous for category names that end in digits.
func CellKey(category string, difficulty int) string {
	return fmt.Sprintf("%s|%d", category, difficulty)
}

// Selection is the session's open cell plus the current phase. On the
// board with nothing open, CategoryID is empty and Difficulty is zero.
type Selection struct {
	CategoryID string `json:"categoryId"`
	Difficulty int    `json:"difficulty"`
	Phase      Phase  `json:"phase"`
}

// Empty reports whether no cell is selected.
func (s Selection) Empty() bool { return s.CategoryID == "" }

// SessionState is the per-quiz, per-device play state. It is owned by
// exactly one device; concurrent writers on the same key are
// last-writer-wins.
type SessionState struct {
	QuizID          string            `json:"quizId"`
	Scores          []int             `json:"scores"`
	UsedCells       []string          `json:"usedCells"`
	Current         Selection         `json:"current"`
	Judge           [NumTeams]Verdict `json:"judge"`
	LastFocusedCell *CellRef          `json:"lastFocusedCell"`
	UpdatedAt       int64             `json:"updatedAt"`
	Version         int               `json:"version"`
}

// IsUsed reports whether the cell key has already been resolved.
func (s *SessionState) IsUsed(key string) bool {
	for _, k := range s.UsedCells {
		if k == key {
			return true
		}
	}
	return false
}
