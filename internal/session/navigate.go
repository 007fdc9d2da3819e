package session

import "grid-quiz-service/internal/domain"

// Direction is a roving-focus move request on the board.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// ParseDirection maps the wire form ("up", "down", ...) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	}
	return 0, false
}

func (d Direction) delta() (dc, dr int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Focus addresses one cell by column (category index) and row
// (difficulty index, row 0 = lowest difficulty).
type Focus struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// RestoreFocus places focus on the last selected cell when it is still
// a valid, unused cell; otherwise on (0,0).
func (e *Engine) RestoreFocus(st *domain.SessionState) Focus {
	lf := st.LastFocusedCell
	if lf == nil {
		return Focus{}
	}
	col := -1
	for i, c := range e.quiz.Categories {
		if c == lf.CategoryID {
			col = i
			break
		}
	}
	row := lf.Difficulty/domain.DifficultyStep - 1
	if col < 0 || row < 0 || row > e.maxRow() || st.IsUsed(lf.Key()) {
		return Focus{}
	}
	return Focus{Col: col, Row: row}
}

// CellAt resolves a focus position to its cell.
func (e *Engine) CellAt(f Focus) domain.CellRef {
	col := clamp(f.Col, 0, e.maxCol())
	row := clamp(f.Row, 0, e.maxRow())
	return domain.CellRef{
		CategoryID: e.quiz.Categories[col],
		Difficulty: (row + 1) * domain.DifficultyStep,
	}
}

// Move walks the focus one step in dir, skipping used cells by
// continuing in the primary direction. After visiting every cell in the
// grid once without finding a free one it gives up and returns the
// focus unchanged.
func (e *Engine) Move(st *domain.SessionState, f Focus, dir Direction) Focus {
	dc, dr := dir.delta()
	maxCol, maxRow := e.maxCol(), e.maxRow()
	c := clamp(f.Col, 0, maxCol)
	r := clamp(f.Row, 0, maxRow)

	total := (maxCol + 1) * (maxRow + 1)
	for i := 0; i < total; i++ {
		c = clamp(c+dc, 0, maxCol)
		r = clamp(r+dr, 0, maxRow)
		cell := e.CellAt(Focus{Col: c, Row: r})
		if !st.IsUsed(cell.Key()) {
			return Focus{Col: c, Row: r}
		}
		// Horizontal moves keep the row and push the column onward;
		// vertical moves keep the column and push the row.
		if dc != 0 {
			if dc > 0 && c < maxCol {
				c++
			} else if dc < 0 && c > 0 {
				c--
			}
		} else if dr != 0 {
			if dr > 0 && r < maxRow {
				r++
			} else if dr < 0 && r > 0 {
				r--
			}
		}
	}
	return Focus{Col: clamp(f.Col, 0, maxCol), Row: clamp(f.Row, 0, maxRow)}
}

func (e *Engine) maxCol() int { return len(e.quiz.Categories) - 1 }

func (e *Engine) maxRow() int { return e.quiz.MaxDifficulty/domain.DifficultyStep - 1 }

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
