package domain

import "crypto/rand"

// DifficultyStep is the spacing of board rows: cells exist at 100,
// 200, ... up to the quiz's MaxDifficulty.
const DifficultyStep = 100

// MaxDifficulties are the allowed values for Quiz.MaxDifficulty.
var MaxDifficulties = []int{200, 300, 400, 500}

// Cell holds one question/answer pair on the board.
type Cell struct {
	Text       string `json:"text"`
	AnswerText string `json:"answer_text"`
}

// Quiz is the full authored grid: ordered categories crossed with every
// difficulty from 100 up to MaxDifficulty. A persisted grid is always
// complete and rectangular.
type Quiz struct {
	ID            string
	Title         string
	MaxDifficulty int
	Categories    []string
	// Cells maps category name -> difficulty -> cell.
	Cells     map[string]map[int]Cell
	CreatedAt int64 // unix milliseconds
	UpdatedAt int64
}

// Difficulties returns the ascending difficulty values of the quiz.
func (q Quiz) Difficulties() []int {
	return DifficultyRange(q.MaxDifficulty)
}

// DifficultyRange enumerates 100..max in steps of 100.
func DifficultyRange(max int) []int {
	var out []int
	for d := DifficultyStep; d <= max; d += DifficultyStep {
		out = append(out, d)
	}
	return out
}

// Clone returns a deep copy so callers can mutate the result freely.
func (q Quiz) Clone() Quiz {
	out := q
	out.Categories = append([]string(nil), q.Categories...)
	out.Cells = make(map[string]map[int]Cell, len(q.Cells))
	for cat, byDiff := range q.Cells {
		m := make(map[int]Cell, len(byDiff))
		for d, c := range byDiff {
			m[d] = c
		}
		out.Cells[cat] = m
	}
	return out
}

const (
	quizIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	quizIDLength   = 20
)

// NewQuizToken draws a 20-character base62 token. Uniqueness is the
// repository's job; at this length collisions are astronomically rare.
func NewQuizToken() string {
	buf := make([]byte, quizIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic("quiz token entropy unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = quizIDAlphabet[int(b)%len(quizIDAlphabet)]
	}
	return string(buf)
}
