// Package session drives the per-device play state for one quiz: the
// board/question/answer machine, judge marks, score commits and the
// roving-focus board navigation.
package session

import (
	"grid-quiz-service/internal/domain"
)

// Engine applies transitions to an explicit session-state value. It
// holds the quiz grid for guards and score deltas but never mutates it.
type Engine struct {
	quiz domain.Quiz
}

func NewEngine(quiz domain.Quiz) *Engine {
	return &Engine{quiz: quiz}
}

// Default returns the fresh state a device starts (or resets) with.
func Default(quizID string) domain.SessionState {
	return domain.SessionState{
		QuizID:    quizID,
		Scores:    make([]int, domain.NumTeams),
		UsedCells: []string{},
		Current:   domain.Selection{Phase: domain.PhaseBoard},
		Version:   domain.SessionVersion,
	}
}

// Select opens a cell from the board. Used cells are not selectable.
func (e *Engine) Select(st *domain.SessionState, category string, difficulty int) error {
	if st.Current.Phase != domain.PhaseBoard {
		return domain.ErrWrongPhase
	}
	if !e.hasCell(category, difficulty) {
		return domain.ErrCellNotFound
	}
	if st.IsUsed(domain.CellKey(category, difficulty)) {
		return domain.ErrCellUsed
	}
	st.Current = domain.Selection{
		CategoryID: category,
		Difficulty: difficulty,
		Phase:      domain.PhaseQuestion,
	}
	st.LastFocusedCell = &domain.CellRef{CategoryID: category, Difficulty: difficulty}
	st.Judge = [domain.NumTeams]domain.Verdict{}
	return nil
}

// Reveal flips the open cell from question to answer and leaves the
// judge marks at unset.
func (e *Engine) Reveal(st *domain.SessionState) error {
	if st.Current.Empty() {
		return domain.ErrNoSelection
	}
	if st.Current.Phase != domain.PhaseQuestion {
		return domain.ErrWrongPhase
	}
	st.Current.Phase = domain.PhaseAnswer
	return nil
}

// ToggleJudge cycles one team's mark during the answer phase. Toggling
// the mark a team already holds clears it; the two verdicts are
// mutually exclusive per slot.
func (e *Engine) ToggleJudge(st *domain.SessionState, team int, verdict domain.Verdict) error {
	if st.Current.Phase != domain.PhaseAnswer {
		return domain.ErrWrongPhase
	}
	if team < 0 || team >= domain.NumTeams {
		return domain.ErrTeamOutOfRange
	}
	if verdict != domain.VerdictCorrect && verdict != domain.VerdictIncorrect {
		return domain.Validation("unknown verdict")
	}
	if st.Judge[team] == verdict {
		st.Judge[team] = domain.VerdictUnset
	} else {
		st.Judge[team] = verdict
	}
	return nil
}

// Commit closes the open cell: applies score deltas from the judge
// marks, adds the cell to the used set exactly once, and returns to the
// board. Committing a cell that is somehow already used applies no
// scores a second time.
func (e *Engine) Commit(st *domain.SessionState) error {
	if st.Current.Empty() {
		return domain.ErrNoSelection
	}
	if st.Current.Phase != domain.PhaseAnswer {
		return domain.ErrWrongPhase
	}

	key := domain.CellKey(st.Current.CategoryID, st.Current.Difficulty)
	if !st.IsUsed(key) {
		delta := st.Current.Difficulty
		for i := 0; i < domain.NumTeams; i++ {
			switch st.Judge[i] {
			case domain.VerdictCorrect:
				st.Scores[i] += delta
			case domain.VerdictIncorrect:
				st.Scores[i] -= delta
			}
		}
		st.UsedCells = append(st.UsedCells, key)
	}

	st.Current = domain.Selection{Phase: domain.PhaseBoard}
	st.Judge = [domain.NumTeams]domain.Verdict{}
	return nil
}

// Reset replaces the state with defaults. The explicit-confirmation
// requirement lives at the boundary, not here.
func (e *Engine) Reset(st *domain.SessionState) {
	*st = Default(st.QuizID)
}

func (e *Engine) hasCell(category string, difficulty int) bool {
	if difficulty < domain.DifficultyStep || difficulty > e.quiz.MaxDifficulty || difficulty%domain.DifficultyStep != 0 {
		return false
	}
	for _, c := range e.quiz.Categories {
		if c == category {
			return true
		}
	}
	return false
}
