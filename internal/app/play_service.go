package app

import (
	"context"

	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/session"
)

// SessionStore persists per-(quiz, device) session state. Load repairs
// whatever it finds and never fails with a corruption error.
type SessionStore interface {
	Load(ctx context.Context, quizID, deviceID string) (domain.SessionState, error)
	Save(ctx context.Context, quizID, deviceID string, st domain.SessionState) error
	Reset(ctx context.Context, quizID, deviceID string) error
}

// PlayService opens play sessions: it resolves the quiz grid and loads
// the device's session state at the view boundary, and saves it back
// after every transition.
type PlayService struct {
	grids    GridFetcher
	sessions SessionStore
}

func NewPlayService(grids GridFetcher, sessions SessionStore) *PlayService {
	return &PlayService{grids: grids, sessions: sessions}
}

// Start returns the quiz grid and the device's (possibly repaired)
// session state. Unknown quiz ids fail with ErrQuizNotFound.
func (s *PlayService) Start(ctx context.Context, quizID, deviceID string) (domain.Quiz, domain.SessionState, error) {
	quiz, err := s.grids.Fetch(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.SessionState{}, err
	}
	st, err := s.sessions.Load(ctx, quizID, deviceID)
	if err != nil {
		return domain.Quiz{}, domain.SessionState{}, err
	}
	return quiz, st, nil
}

// Save persists the state after a transition.
func (s *PlayService) Save(ctx context.Context, quizID, deviceID string, st domain.SessionState) error {
	return s.sessions.Save(ctx, quizID, deviceID, st)
}

// Reset drops the stored state and returns fresh defaults.
func (s *PlayService) Reset(ctx context.Context, quizID, deviceID string) (domain.SessionState, error) {
	if err := s.sessions.Reset(ctx, quizID, deviceID); err != nil {
		return domain.SessionState{}, err
	}
	return session.Default(quizID), nil
}
