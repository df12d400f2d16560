package store

import (
	"sync"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

// StatusAtom holds the per-chat streaming status shown while the assistant
// composes a reply ("thinking", "searching", ...). It changes independently
// of message content.
type StatusAtom struct {
	mu     sync.RWMutex
	status map[string]string
}

// NewStatusAtom creates an empty status atom.
func NewStatusAtom() *StatusAtom {
	return &StatusAtom{status: make(map[string]string)}
}

// Set records the chat's streaming status.
func (a *StatusAtom) Set(chatID, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status[chatID] = status
}

// Clear removes the chat's streaming status.
func (a *StatusAtom) Clear(chatID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.status, chatID)
}

// Get returns the chat's streaming status, or "".
func (a *StatusAtom) Get(chatID string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status[chatID]
}

// UsageAtom holds the latest account quota view.
type UsageAtom struct {
	mu    sync.RWMutex
	usage model.Usage
	set   bool
}

// NewUsageAtom creates an empty usage atom.
func NewUsageAtom() *UsageAtom {
	return &UsageAtom{}
}

// Set records a fresh usage view.
func (a *UsageAtom) Set(u model.Usage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage = u
	a.set = true
}

// Get returns the latest usage view and whether one has been recorded.
func (a *UsageAtom) Get() (model.Usage, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.usage, a.set
}
