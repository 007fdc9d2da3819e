package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grid-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizRepository persists quiz grids across the quizzes/categories/
// questions tables. Every write runs as one transaction: either the
// whole grid lands or nothing does.
type QuizRepository struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool, clock: time.Now}
}

// Create inserts the quiz row, its categories and every question cell
// under a freshly drawn unique identifier.
func (r *QuizRepository) Create(ctx context.Context, quiz domain.Quiz) (string, error) {
	quizID, err := r.newUniqueID(ctx)
	if err != nil {
		return "", fmt.Errorf("generate quiz id: %w", err)
	}
	ts := r.clock().UnixMilli()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO quizzes (quiz_id, title, max_difficulty, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		quizID, quiz.Title, quiz.MaxDifficulty, ts, ts,
	); err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	if err := insertGrid(ctx, tx, quizID, quiz); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit create: %w", err)
	}
	return quizID, nil
}

// Replace overwrites the quiz as a full unit: quiz row updated, old
// categories deleted (cascading to their cells), new grid re-inserted.
func (r *QuizRepository) Replace(ctx context.Context, quizID string, quiz domain.Quiz) error {
	exists, err := r.exists(ctx, quizID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrQuizNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE quizzes SET title=$1, max_difficulty=$2, updated_at=$3 WHERE quiz_id=$4`,
		quiz.Title, quiz.MaxDifficulty, r.clock().UnixMilli(), quizID,
	); err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE quiz_id=$1`, quizID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	if err := insertGrid(ctx, tx, quizID, quiz); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Clone copies the quiz row, categories and cells under a fresh
// identifier, remapping category ids.
func (r *QuizRepository) Clone(ctx context.Context, quizID string) (string, error) {
	src, err := r.Fetch(ctx, quizID)
	if err != nil {
		return "", err
	}

	newID, err := r.newUniqueID(ctx)
	if err != nil {
		return "", fmt.Errorf("generate quiz id: %w", err)
	}
	ts := r.clock().UnixMilli()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin clone: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO quizzes (quiz_id, title, max_difficulty, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		newID, src.Title, src.MaxDifficulty, ts, ts,
	); err != nil {
		return "", fmt.Errorf("insert quiz copy: %w", err)
	}
	if err := insertGrid(ctx, tx, newID, src); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit clone: %w", err)
	}
	return newID, nil
}

// Delete removes the quiz row; foreign keys cascade to categories and
// questions. Deleting an unknown id is not an error.
func (r *QuizRepository) Delete(ctx context.Context, quizID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE quiz_id=$1`, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

// Fetch loads the full grid: title, max difficulty, ordered category
// names and the category -> difficulty -> cell mapping.
func (r *QuizRepository) Fetch(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := r.pool.QueryRow(ctx,
		`SELECT quiz_id, title, max_difficulty, created_at, updated_at FROM quizzes WHERE quiz_id=$1`,
		quizID,
	).Scan(&quiz.ID, &quiz.Title, &quiz.MaxDifficulty, &quiz.CreatedAt, &quiz.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT category_id, name FROM categories WHERE quiz_id=$1 ORDER BY category_id ASC`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan category: %w", err)
		}
		names[id] = name
		quiz.Categories = append(quiz.Categories, name)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load categories: %w", err)
	}

	qrows, err := r.pool.Query(ctx,
		`SELECT category_id, difficulty, text, answer_text FROM questions WHERE quiz_id=$1`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer qrows.Close()

	quiz.Cells = make(map[string]map[int]domain.Cell, len(quiz.Categories))
	for _, name := range quiz.Categories {
		quiz.Cells[name] = make(map[int]domain.Cell)
	}
	for qrows.Next() {
		var catID int64
		var difficulty int
		var cell domain.Cell
		if err := qrows.Scan(&catID, &difficulty, &cell.Text, &cell.AnswerText); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		if name, ok := names[catID]; ok {
			quiz.Cells[name][difficulty] = cell
		}
	}
	if err := qrows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}

// insertGrid inserts categories and question cells for quizID inside
// the caller's transaction.
func insertGrid(ctx context.Context, tx pgx.Tx, quizID string, quiz domain.Quiz) error {
	catIDs := make(map[string]int64, len(quiz.Categories))
	for _, name := range quiz.Categories {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO categories (quiz_id, name) VALUES ($1,$2) RETURNING category_id`,
			quizID, name,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert category %q: %w", name, err)
		}
		catIDs[name] = id
	}
	for _, name := range quiz.Categories {
		for _, d := range quiz.Difficulties() {
			cell := quiz.Cells[name][d]
			if _, err := tx.Exec(ctx,
				`INSERT INTO questions (quiz_id, category_id, difficulty, text, answer_text) VALUES ($1,$2,$3,$4,$5)`,
				quizID, catIDs[name], d, cell.Text, cell.AnswerText,
			); err != nil {
				return fmt.Errorf("insert question %s/%d: %w", name, d, err)
			}
		}
	}
	return nil
}

func (r *QuizRepository) exists(ctx context.Context, quizID string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM quizzes WHERE quiz_id=$1`, quizID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check quiz id: %w", err)
	}
	return true, nil
}

// newUniqueID retries until the drawn token is unused. Collisions on a
// 20-char base62 token are effectively impossible, so the loop is
// unbounded on purpose.
func (r *QuizRepository) newUniqueID(ctx context.Context) (string, error) {
	for {
		id := domain.NewQuizToken()
		exists, err := r.exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}
