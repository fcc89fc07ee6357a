// Package memory provides in-memory storage adapters.
package memory

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Default limits for the session store.
const (
	// DefaultMaxHistory is the number of exchanges kept per session.
	DefaultMaxHistory = 2

	// DefaultMaxSessions caps how many sessions the store holds before
	// the least recently used one is evicted.
	DefaultMaxSessions = 1000
)

// SessionStore keeps bounded conversation history in memory.
//
// Both bounds are enforced at write time: each session keeps its last
// maxHistory exchanges, and the store keeps its maxSessions most
// recently used sessions.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string][]domain.Exchange
	recency     []string // session IDs, least recently used first
	maxHistory  int
	maxSessions int
}

// NewSessionStore creates a session store. Non-positive limits fall back
// to the defaults.
func NewSessionStore(maxHistory, maxSessions int) *SessionStore {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		sessions:    make(map[string][]domain.Exchange),
		maxHistory:  maxHistory,
		maxSessions: maxSessions,
	}
}

// Create starts a new empty session and returns its identifier.
func (s *SessionStore) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = nil
	s.touch(id)
	s.evict()
	return id
}

// AppendExchange records one question-answer pair, trimming the session
// to its history limit. Appending to an unknown session creates it.
func (s *SessionStore) AppendExchange(sessionID, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[sessionID], domain.Exchange{
		UserText:      userText,
		AssistantText: assistantText,
	})
	if len(exchanges) > s.maxHistory {
		exchanges = exchanges[len(exchanges)-s.maxHistory:]
	}
	s.sessions[sessionID] = exchanges

	s.touch(sessionID)
	s.evict()
}

// History renders the session's exchanges oldest first. The second
// return is false for unknown sessions.
func (s *SessionStore) History(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}
	s.touch(sessionID)

	parts := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		parts = append(parts, "User: "+e.UserText+"\nAssistant: "+e.AssistantText)
	}
	return strings.Join(parts, "\n"), true
}

// Clear removes a session entirely.
func (s *SessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	s.forget(sessionID)
}

// touch moves the session to the most recently used position.
// Caller must hold the lock.
func (s *SessionStore) touch(sessionID string) {
	s.forget(sessionID)
	s.recency = append(s.recency, sessionID)
}

// forget drops the session from the recency order.
// Caller must hold the lock.
func (s *SessionStore) forget(sessionID string) {
	for i, id := range s.recency {
		if id == sessionID {
			s.recency = append(s.recency[:i], s.recency[i+1:]...)
			return
		}
	}
}

// evict removes least recently used sessions until the store is within
// its capacity. Caller must hold the lock.
func (s *SessionStore) evict() {
	for len(s.sessions) > s.maxSessions && len(s.recency) > 0 {
		oldest := s.recency[0]
		s.recency = s.recency[1:]
		delete(s.sessions, oldest)
	}
}
