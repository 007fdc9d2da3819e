package app

import (
	"context"

	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/validate"
)

// GridRepository owns the relational representation of a quiz and
// performs atomic create/replace/clone/delete.
type GridRepository interface {
	Create(ctx context.Context, quiz domain.Quiz) (string, error)
	Replace(ctx context.Context, quizID string, quiz domain.Quiz) error
	Clone(ctx context.Context, quizID string) (string, error)
	Delete(ctx context.Context, quizID string) error
	Fetch(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GridFetcher is the read side of the repository (or a cache over it).
type GridFetcher interface {
	Fetch(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GridCache is a read-through cache that can be dropped when a quiz
// changes underneath it.
type GridCache interface {
	GridFetcher
	Invalidate(ctx context.Context, quizID string)
}

// QuizInput is the author-submitted payload before sanitization.
type QuizInput struct {
	Title         string
	Categories    []string
	MaxDifficulty int
	Cells         map[string]map[int]domain.Cell
}

// QuizService runs the authoring use cases: validation first, then the
// repository's atomic write. Validation failures abort before any
// write begins.
type QuizService struct {
	repo  GridRepository
	cache GridCache // optional
}

func NewQuizService(repo GridRepository, cache GridCache) *QuizService {
	return &QuizService{repo: repo, cache: cache}
}

// Create validates and persists a new quiz, returning its identifier.
func (s *QuizService) Create(ctx context.Context, in QuizInput) (string, error) {
	quiz, err := sanitizeAndValidate(in)
	if err != nil {
		return "", err
	}
	return s.repo.Create(ctx, quiz)
}

// Replace validates and overwrites an existing quiz as a full unit.
func (s *QuizService) Replace(ctx context.Context, quizID string, in QuizInput) error {
	quiz, err := sanitizeAndValidate(in)
	if err != nil {
		return err
	}
	if err := s.repo.Replace(ctx, quizID, quiz); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, quizID)
	}
	return nil
}

// Clone copies an existing quiz under a fresh identifier.
func (s *QuizService) Clone(ctx context.Context, quizID string) (string, error) {
	return s.repo.Clone(ctx, quizID)
}

// Delete removes a quiz; unknown identifiers are not an error.
func (s *QuizService) Delete(ctx context.Context, quizID string) error {
	if err := s.repo.Delete(ctx, quizID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, quizID)
	}
	return nil
}

// Fetch loads a quiz grid, through the cache when one is configured.
func (s *QuizService) Fetch(ctx context.Context, quizID string) (domain.Quiz, error) {
	if s.cache != nil {
		return s.cache.Fetch(ctx, quizID)
	}
	return s.repo.Fetch(ctx, quizID)
}

// sanitizeAndValidate applies the shared pipeline in the original
// order: title, categories, max difficulty, then the full grid.
func sanitizeAndValidate(in QuizInput) (domain.Quiz, error) {
	title := validate.Sanitize(in.Title)
	if err := validate.Text(title); err != nil {
		return domain.Quiz{}, domain.Validation("title: " + err.Error())
	}

	cats := make([]string, len(in.Categories))
	for i, c := range in.Categories {
		cats[i] = validate.Sanitize(c)
	}
	if err := validate.Categories(cats); err != nil {
		return domain.Quiz{}, err
	}
	if err := validate.MaxDifficulty(in.MaxDifficulty); err != nil {
		return domain.Quiz{}, err
	}
	if err := validate.Grid(cats, in.MaxDifficulty, in.Cells); err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		Title:         title,
		MaxDifficulty: in.MaxDifficulty,
		Categories:    cats,
		Cells:         make(map[string]map[int]domain.Cell, len(cats)),
	}
	for _, cat := range cats {
		quiz.Cells[cat] = make(map[int]domain.Cell)
		for _, d := range quiz.Difficulties() {
			cell := in.Cells[cat][d]
			quiz.Cells[cat][d] = domain.Cell{
				Text:       validate.Sanitize(cell.Text),
				AnswerText: validate.Sanitize(cell.AnswerText),
			}
		}
	}
	return quiz, nil
}
