package redis

import (
	"context"
	"encoding/json"
	"time"

	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/session"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one JSON session document per (quiz, device) pair
// under quiz:session:{quizID}:{deviceID} with a TTL. Saves overwrite
// the whole document, so concurrent writers on the same key are
// last-writer-wins.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		clock:  time.Now,
	}
}

// Load returns the stored state repaired to a usable value. A missing
// key, a read failure or a corrupted document all yield defaults.
func (s *SessionStore) Load(ctx context.Context, quizID, deviceID string) (domain.SessionState, error) {
	raw, err := s.client.Get(ctx, s.key(quizID, deviceID)).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike: the player gets a
		// fresh board rather than an error.
		return session.Default(quizID), nil
	}
	return session.RepairJSON(quizID, raw), nil
}

// Save stamps UpdatedAt and writes the full document in a single SET.
func (s *SessionStore) Save(ctx context.Context, quizID, deviceID string, st domain.SessionState) error {
	st.UpdatedAt = s.clock().UnixMilli()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(quizID, deviceID), raw, s.ttl).Err()
}

// Reset deletes the document; the next Load starts from defaults.
func (s *SessionStore) Reset(ctx context.Context, quizID, deviceID string) error {
	return s.client.Del(ctx, s.key(quizID, deviceID)).Err()
}

func (s *SessionStore) key(quizID, deviceID string) string {
	return "quiz:session:" + quizID + ":" + deviceID
}
