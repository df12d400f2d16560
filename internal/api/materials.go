package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

// Thin request/response wrappers for study materials. None of these carry
// client-side state; list and detail views consume them directly.

// ListProjects lists the account's projects.
func (c *Client) ListProjects(ctx context.Context) (*model.ListProjectsResponse, error) {
	var out model.ListProjectsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+projectID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments lists a project's uploaded documents.
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	var out []model.Document
	path := fmt.Sprintf("/api/v1/projects/%s/documents", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetQuiz fetches a generated quiz.
func (c *Client) GetQuiz(ctx context.Context, projectID, quizID string) (*model.Quiz, error) {
	var out model.Quiz
	path := fmt.Sprintf("/api/v1/projects/%s/quizzes/%s", projectID, quizID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFlashcardDeck fetches a flashcard deck.
func (c *Client) GetFlashcardDeck(ctx context.Context, projectID, deckID string) (*model.FlashcardDeck, error) {
	var out model.FlashcardDeck
	path := fmt.Sprintf("/api/v1/projects/%s/flashcards/%s", projectID, deckID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotes lists a project's notes.
func (c *Client) ListNotes(ctx context.Context, projectID string) ([]model.Note, error) {
	var out []model.Note
	path := fmt.Sprintf("/api/v1/projects/%s/notes", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMindMap fetches a generated mind map.
func (c *Client) GetMindMap(ctx context.Context, projectID, mapID string) (*model.MindMap, error) {
	var out model.MindMap
	path := fmt.Sprintf("/api/v1/projects/%s/mindmaps/%s", projectID, mapID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
