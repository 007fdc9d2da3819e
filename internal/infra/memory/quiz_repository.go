package memory

import (
	"context"
	"sync"
	"time"

	"grid-quiz-service/internal/domain"
)

// QuizRepository is an in-memory grid repository used by tests and the
// no-postgres dev mode. Writes hold the lock for their whole unit, so
// the all-or-nothing semantics of the SQL repository hold trivially.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
	clock   func() time.Time
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		quizzes: make(map[string]domain.Quiz),
		clock:   time.Now,
	}
}

func (r *QuizRepository) Create(_ context.Context, quiz domain.Quiz) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newUniqueIDLocked()
	ts := r.clock().UnixMilli()
	stored := quiz.Clone()
	stored.ID = id
	stored.CreatedAt = ts
	stored.UpdatedAt = ts
	r.quizzes[id] = stored
	return id, nil
}

func (r *QuizRepository) Replace(_ context.Context, quizID string, quiz domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	stored := quiz.Clone()
	stored.ID = quizID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.clock().UnixMilli()
	r.quizzes[quizID] = stored
	return nil
}

func (r *QuizRepository) Clone(_ context.Context, quizID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.quizzes[quizID]
	if !ok {
		return "", domain.ErrQuizNotFound
	}
	id := r.newUniqueIDLocked()
	ts := r.clock().UnixMilli()
	copied := src.Clone()
	copied.ID = id
	copied.CreatedAt = ts
	copied.UpdatedAt = ts
	r.quizzes[id] = copied
	return id, nil
}

// Delete is idempotent: removing an unknown id is not an error.
func (r *QuizRepository) Delete(_ context.Context, quizID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, quizID)
	return nil
}

func (r *QuizRepository) Fetch(_ context.Context, quizID string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz.Clone(), nil
}

func (r *QuizRepository) newUniqueIDLocked() string {
	for {
		id := domain.NewQuizToken()
		if _, exists := r.quizzes[id]; !exists {
			return id
		}
	}
}
