// Package session holds per-conversation state: the evolving user profile
// and a bounded message history, keyed by (user, session).
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
)

const defaultMaxHistory = 50

// Key identifies one conversation. Both parts are kept as separate fields
// so distinct (user, session) pairs can never collide.
type Key struct {
	UserID    string
	SessionID string
}

// Message is one turn of the conversation transcript.
type Message struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// State is everything the agent remembers about one conversation. Access it
// only through Store.Do, which serializes per-session mutation.
type State struct {
	Key      Key
	Profile  *profile.Profile
	Messages []Message

	mu sync.Mutex
}

// AppendMessage adds a turn to the transcript, trimming the oldest entries
// past the history cap. Caller must hold the session (via Store.Do).
func (s *State) AppendMessage(role, content string, maxHistory int) Message {
	m := Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	}
	s.Messages = append(s.Messages, m)
	if over := len(s.Messages) - maxHistory; over > 0 {
		s.Messages = append(s.Messages[:0], s.Messages[over:]...)
	}
	return m
}

// Store is an in-memory session registry. Sessions are created on first
// touch and never expire on their own; the process owns their lifetime.
type Store struct {
	mu         sync.Mutex
	sessions   map[Key]*State
	maxHistory int
}

// NewStore creates an empty store. maxHistory <= 0 selects the default cap.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &Store{
		sessions:   make(map[Key]*State),
		maxHistory: maxHistory,
	}
}

// MaxHistory reports the transcript cap sessions are trimmed to.
func (s *Store) MaxHistory() int { return s.maxHistory }

func (s *Store) get(key Key) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[key]
	if !ok {
		st = &State{Key: key, Profile: &profile.Profile{}}
		s.sessions[key] = st
	}
	return st
}

// Do runs fn with exclusive access to the session's state, creating the
// session if it does not exist yet. Concurrent calls for different keys do
// not block each other.
func (s *Store) Do(key Key, fn func(*State) error) error {
	st := s.get(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st)
}

// Snapshot returns a deep copy of the session's profile, or nil if the
// session has never been touched.
func (s *Store) Snapshot(key Key) *profile.Profile {
	s.mu.Lock()
	st, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.Profile.Clone()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
