package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one logged agent turn: the user's query and the envelope
// the agent answered with.
type Interaction struct {
	ID              string
	CreatedAt       time.Time
	UserID          string
	SessionID       string
	UserQuery       string
	Status          string
	MatchType       string
	ResponseMessage string
}

// ProfileSnapshot is the latest serialized profile for one session, kept so
// a restarted process can answer "what do you know about me".
type ProfileSnapshot struct {
	UserID      string
	SessionID   string
	ProfileJSON string
	UpdatedAt   time.Time
}
