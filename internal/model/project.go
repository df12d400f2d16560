package model

import (
	"time"
)

// Project groups a student's chats and study materials.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is an uploaded study document.
type Document struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Filename  string    `json:"filename"`
	MediaType string    `json:"media_type"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Quiz is a generated quiz over project materials.
type Quiz struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// QuizQuestion is a single question with its choices.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

// FlashcardDeck is a generated set of flashcards.
type FlashcardDeck struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Title     string      `json:"title"`
	Cards     []Flashcard `json:"cards,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Flashcard is a single front/back card.
type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Note is a free-form study note.
type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MindMap is a generated concept map.
type MindMap struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Title     string        `json:"title"`
	Nodes     []MindMapNode `json:"nodes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// MindMapNode is one node in a concept map.
type MindMapNode struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Label    string `json:"label"`
}

// ListProjectsResponse is the response for listing projects.
type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"has_more"`
}
