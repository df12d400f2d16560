package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SentinelMessageID is the reserved id of the optimistic placeholder message
// inserted at request start and replaced or removed before a turn settles.
const SentinelMessageID = "temporary-message-id"

// ChatMessage is one turn in a chat. Parts keep their arrival/merge order.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Parts     []Part    `json:"parts"`
}

// IsSentinel reports whether the message is the optimistic placeholder.
func (m ChatMessage) IsSentinel() bool {
	return m.ID == SentinelMessageID
}

// Chat is a tutoring chat thread within a project.
type Chat struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `json:"messages,omitempty"`
}

// SendMessageRequest is the outgoing user message for the stream endpoint.
type SendMessageRequest struct {
	Content string `json:"content"`
	Parts   []Part `json:"parts,omitempty"`
}

// CreateChatRequest is the request to create a new chat.
type CreateChatRequest struct {
	Title string `json:"title"`
}

// ListChatsResponse is the response for listing chats in a project.
type ListChatsResponse struct {
	Chats   []Chat `json:"chats"`
	Total   int    `json:"total"`
	HasMore bool   `json:"has_more"`
}

// Usage is the account quota view refreshed after a completed or
// rate-limited turn.
type Usage struct {
	MessagesUsed  int        `json:"messages_used"`
	MessagesLimit int        `json:"messages_limit"`
	ResetsAt      *time.Time `json:"resets_at,omitempty"`
}

// Remaining reports how many messages are left in the current window.
func (u Usage) Remaining() int {
	if u.MessagesLimit <= u.MessagesUsed {
		return 0
	}
	return u.MessagesLimit - u.MessagesUsed
}
