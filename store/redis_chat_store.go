package store

import (
	"fmt"
	"time"

	"github.com/quietroom/quiet-room-bot/types"
)

// ChatSession is the volatile per-chat conversation state. Today it only
// carries the admin broadcast flow: which step the admin is on and which
// message is pending fan-out.
type ChatSession struct {
	State            types.ChatState `json:"state"`
	PendingChatID    int64           `json:"pending_chat_id,omitempty"`
	PendingMessageID int             `json:"pending_message_id,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type RedisChatStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisChatStore(redisClient *RedisClient, ttlHours int) *RedisChatStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisChatStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisChatStore) GetSession(userID int64) (*ChatSession, error) {
	key := s.client.generateKey("chat_state", fmt.Sprintf("%d", userID))
	var session ChatSession
	if err := s.client.Get(key, &session); err != nil {
		return &ChatSession{State: types.StateIdle}, nil
	}
	if session.State == "" {
		session.State = types.StateIdle
	}
	return &session, nil
}

func (s *RedisChatStore) SetSession(userID int64, session *ChatSession) error {
	key := s.client.generateKey("chat_state", fmt.Sprintf("%d", userID))
	session.UpdatedAt = time.Now().UTC()
	return s.client.Set(key, session, s.ttl)
}

func (s *RedisChatStore) ClearSession(userID int64) error {
	key := s.client.generateKey("chat_state", fmt.Sprintf("%d", userID))
	return s.client.Del(key)
}
