package memory

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

type session struct {
	token   string
	expires time.Time
}

// SessionStore 进程内会话，redis 未配置时使用
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uint64]session
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: map[uint64]session{}, now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session{token: token, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, userID uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || !s.now().Before(sess.expires) {
		delete(s.sessions, userID)
		return "", ErrSessionNotFound
	}
	return sess.token, nil
}

func (s *SessionStore) Extend(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.expires = s.now().Add(s.ttl)
		s.sessions[userID] = sess
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
