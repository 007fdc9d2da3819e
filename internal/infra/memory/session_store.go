package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/session"
)

// SessionStore keeps per-(quiz, device) session documents in memory.
// Documents are stored as JSON bytes so load goes through the same
// repair path as the redis store, and saves are last-writer-wins.
type SessionStore struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	clock func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		docs:  make(map[string][]byte),
		clock: time.Now,
	}
}

// Load returns the stored state repaired to a usable value; missing or
// corrupted documents yield defaults. It never fails.
func (s *SessionStore) Load(_ context.Context, quizID, deviceID string) (domain.SessionState, error) {
	s.mu.RLock()
	raw := s.docs[sessionKey(quizID, deviceID)]
	s.mu.RUnlock()
	return session.RepairJSON(quizID, raw), nil
}

// Save stamps UpdatedAt and writes the full document in one step.
func (s *SessionStore) Save(_ context.Context, quizID, deviceID string, st domain.SessionState) error {
	st.UpdatedAt = s.clock().UnixMilli()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[sessionKey(quizID, deviceID)] = raw
	s.mu.Unlock()
	return nil
}

// Reset deletes the document; the next Load starts from defaults.
func (s *SessionStore) Reset(_ context.Context, quizID, deviceID string) error {
	s.mu.Lock()
	delete(s.docs, sessionKey(quizID, deviceID))
	s.mu.Unlock()
	return nil
}

func sessionKey(quizID, deviceID string) string {
	return quizID + "|" + deviceID
}
