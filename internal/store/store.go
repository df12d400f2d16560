// Package store holds the canonical per-chat message lists written by the
// streaming assembler and read by UI surfaces.
package store

import (
	"sync"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

// MessageStore is the single writer of truth for chat messages. Every
// mutation is a read-modify-write against the last committed snapshot; one
// chat has at most one active stream, so per-key commits are sequential. The
// mutex only guards the map against independent chats streaming from
// separate goroutines.
type MessageStore struct {
	mu    sync.RWMutex
	chats map[string][]model.ChatMessage
	subs  map[string][]chan []model.ChatMessage
}

// NewMessageStore creates an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		chats: make(map[string][]model.ChatMessage),
		subs:  make(map[string][]chan []model.ChatMessage),
	}
}

// Messages returns a snapshot of the chat's message list.
func (s *MessageStore) Messages(chatID string) []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.chats[chatID])
}

// Message returns a snapshot of one message by id.
func (s *MessageStore) Message(chatID, messageID string) (model.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.chats[chatID] {
		if m.ID == messageID {
			return m, true
		}
	}
	return model.ChatMessage{}, false
}

// Append adds a message at the end of the chat's list.
func (s *MessageStore) Append(chatID string, msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chatID] = append(snapshot(s.chats[chatID]), msg)
	s.notifyLocked(chatID)
}

// ReplaceParts commits a new part sequence for one message. It reports
// whether the message was found.
func (s *MessageStore) ReplaceParts(chatID, messageID string, parts []model.Part) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := snapshot(s.chats[chatID])
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Parts = parts
			s.chats[chatID] = msgs
			s.notifyLocked(chatID)
			return true
		}
	}
	return false
}

// RemoveSentinel removes the optimistic placeholder message, if present.
func (s *MessageStore) RemoveSentinel(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.chats[chatID]
	out := make([]model.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.IsSentinel() {
			continue
		}
		out = append(out, m)
	}
	if len(out) == len(msgs) {
		return
	}
	s.chats[chatID] = out
	s.notifyLocked(chatID)
}

// ReplaceWhole swaps the chat's entire message list for the canonical one
// fetched at reconciliation.
func (s *MessageStore) ReplaceWhole(chatID string, msgs []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chatID] = snapshot(msgs)
	s.notifyLocked(chatID)
}

// Subscribe returns a channel that receives the latest snapshot after each
// commit to the chat, and a cancel func that closes it. The channel holds
// only the most recent snapshot; stale values are replaced, never queued.
func (s *MessageStore) Subscribe(chatID string) (<-chan []model.ChatMessage, func()) {
	ch := make(chan []model.ChatMessage, 1)
	s.mu.Lock()
	s.subs[chatID] = append(s.subs[chatID], ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[chatID]
		for i, c := range subs {
			if c == ch {
				s.subs[chatID] = append(subs[:i:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (s *MessageStore) notifyLocked(chatID string) {
	snap := snapshot(s.chats[chatID])
	for _, ch := range s.subs[chatID] {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func snapshot(msgs []model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
