// Package model defines data structures for the StudyHall client.
package model

import (
	"encoding/json"
)

// PartType discriminates the Part union.
type PartType string

const (
	PartTypeText           PartType = "text"
	PartTypeFile           PartType = "file"
	PartTypeToolCall       PartType = "tool-call"
	PartTypeSourceDocument PartType = "source-document"
)

// Part is one typed fragment of a chat message. The wire format is a tagged
// union discriminated by Type; fields outside a variant are left zero. Order
// is a matching hint used by the merge engine, never a sort key.
type Part struct {
	Type  PartType `json:"type"`
	ID    string   `json:"id,omitempty"`
	Order int      `json:"order,omitempty"`

	// Text
	TextContent string `json:"text_content,omitempty"`

	// File
	MediaType string `json:"media_type,omitempty"`
	Filename  string `json:"filename,omitempty"`
	URL       string `json:"url,omitempty"`

	// ToolCall
	ToolCallID string          `json:"tool_call_id,omitempty"`
	State      string          `json:"state,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"error_text,omitempty"`

	// SourceDocument
	SourceID string  `json:"source_id,omitempty"`
	Title    string  `json:"title,omitempty"`
	Content  string  `json:"content,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// TextPart builds a text part.
func TextPart(id string, order int, text string) Part {
	return Part{Type: PartTypeText, ID: id, Order: order, TextContent: text}
}
