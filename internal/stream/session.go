package stream

import (
	"github.com/google/uuid"
)

// Session is the ephemeral state of one stream invocation. It starts pending
// on the optimistic sentinel message and is confirmed once the first server
// event carries a real message id.
type Session struct {
	id      string
	pending bool
	seen    map[string]bool
	status  string
	firstID string
	sawDone bool
}

// NewSession creates a pending session.
func NewSession() *Session {
	return &Session{
		id:      uuid.Must(uuid.NewV7()).String(),
		pending: true,
		seen:    make(map[string]bool),
	}
}

// ID is the client-generated id of this invocation, used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Pending reports whether no server message id has been observed yet.
func (s *Session) Pending() bool {
	return s.pending
}

// Observe records a server message id. It returns true the first time a
// given id is seen, which is when the orchestrator must create the message.
func (s *Session) Observe(messageID string) bool {
	if messageID == "" || s.seen[messageID] {
		return false
	}
	s.seen[messageID] = true
	if s.pending {
		s.pending = false
		s.firstID = messageID
	}
	return true
}

// FirstMessageID is the first server message id observed, or "".
func (s *Session) FirstMessageID() string {
	return s.firstID
}

// SetStatus records the last-seen stream status.
func (s *Session) SetStatus(status string) {
	s.status = status
}

// Status is the last-seen stream status.
func (s *Session) Status() string {
	return s.status
}

// MarkDone records that a done event was processed.
func (s *Session) MarkDone() {
	s.sawDone = true
}

// Done reports whether a done event was processed.
func (s *Session) Done() bool {
	return s.sawDone
}
