package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	userID    int64
	expiresAt time.Time
}

// SessionStore is an in-memory session store with TTL expiry. Stale sessions
// are swept by a background goroutine until Stop is called.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]session
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

// Create registers a new session for the user and returns its ID.
func (s *SessionStore) Create(userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = session{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	return id, nil
}

// Lookup resolves a session ID to its user. Expired sessions are removed on
// the spot and reported as not found.
func (s *SessionStore) Lookup(id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return 0, ErrSessionNotFound
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, id)
		return 0, ErrSessionNotFound
	}
	return sess.userID, nil
}

// Destroy removes a session. Destroying an unknown ID is a no-op.
func (s *SessionStore) Destroy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Stop shuts down the cleanup goroutine.
func (s *SessionStore) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}

func (s *SessionStore) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *SessionStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.New("generate session id: " + err.Error())
	}
	return hex.EncodeToString(b), nil
}
