package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

func textDelta(partID, text string) model.PartEvent {
	return model.PartEvent{
		MessageID: "m1",
		PartID:    partID,
		Delta:     &model.Delta{Text: text},
	}
}

func partDelta(p model.Part) model.PartEvent {
	return model.PartEvent{
		MessageID: "m1",
		Delta:     &model.Delta{Part: &p},
	}
}

func finalEvent(p model.Part) model.PartEvent {
	return model.PartEvent{MessageID: "m1", Done: true, Part: &p}
}

func TestMergeTextDeltaConcatenation(t *testing.T) {
	var parts []model.Part
	for _, fragment := range []string{"Hel", "lo", " world"} {
		parts = Merge(parts, textDelta("p1", fragment))
	}

	require.Len(t, parts, 1)
	assert.Equal(t, model.PartTypeText, parts[0].Type)
	assert.Equal(t, "p1", parts[0].ID)
	assert.Equal(t, "Hello world", parts[0].TextContent)
}

func TestMergeTextDeltaWithoutPartIDUsesOrderZero(t *testing.T) {
	parts := []model.Part{model.TextPart("", 0, "Hi")}
	parts = Merge(parts, textDelta("", " there"))

	require.Len(t, parts, 1)
	assert.Equal(t, "Hi there", parts[0].TextContent)
}

func TestMergeStatusOnlyIsNoOp(t *testing.T) {
	parts := []model.Part{model.TextPart("p1", 0, "Hi")}
	got := Merge(parts, model.PartEvent{MessageID: "m1", Status: "thinking"})

	assert.Equal(t, parts, got)
	// Referentially unchanged, not just structurally.
	assert.True(t, &got[0] == &parts[0], "status event must not copy parts")
}

func TestMergeFinalReplaceByID(t *testing.T) {
	parts := []model.Part{model.TextPart("p1", 0, "Hi the")}
	final := model.TextPart("p1", 0, "Hi there")
	parts = Merge(parts, finalEvent(final))

	require.Len(t, parts, 1)
	assert.Equal(t, "Hi there", parts[0].TextContent)
}

func TestMergeFinalIsIdempotent(t *testing.T) {
	start := []model.Part{model.TextPart("p1", 0, "partial")}
	final := finalEvent(model.TextPart("p1", 0, "complete"))

	once := Merge(start, final)
	twice := Merge(once, final)

	assert.Equal(t, once, twice)
	require.Len(t, twice, 1)
}

func TestMergeFinalFallsBackToFirstTextPart(t *testing.T) {
	// The done part matches nothing by id or (order, type); it must replace
	// the first text part, never append a second one.
	parts := []model.Part{
		{Type: model.PartTypeSourceDocument, SourceID: "doc-1", Order: 0},
		model.TextPart("lost-id", 3, "accumulated"),
	}
	final := finalEvent(model.TextPart("p9", 7, "authoritative"))
	parts = Merge(parts, final)

	require.Len(t, parts, 2)
	assert.Equal(t, model.PartTypeSourceDocument, parts[0].Type)
	assert.Equal(t, "authoritative", parts[1].TextContent)
	assert.Equal(t, "p9", parts[1].ID)
}

func TestMergeSourceDocumentDedupBySourceID(t *testing.T) {
	// Two deltas sharing source_id with drifting order, then the final part:
	// exactly one source document survives.
	var parts []model.Part
	parts = Merge(parts, partDelta(model.Part{
		Type: model.PartTypeSourceDocument, SourceID: "doc-1", Order: 1,
	}))
	parts = Merge(parts, partDelta(model.Part{
		Type: model.PartTypeSourceDocument, SourceID: "doc-1", Order: 2,
	}))
	require.Len(t, parts, 1)

	parts = Merge(parts, finalEvent(model.Part{
		Type: model.PartTypeSourceDocument, SourceID: "doc-1", Order: 5,
		Title: "Biology 101", Score: 0.9,
	}))

	require.Len(t, parts, 1)
	assert.Equal(t, "Biology 101", parts[0].Title)
	assert.Equal(t, 5, parts[0].Order)
}

func TestMergeFinalMatchByOrderAndType(t *testing.T) {
	parts := []model.Part{
		{Type: model.PartTypeToolCall, ToolCallID: "t1", Order: 2, State: "running"},
	}
	parts = Merge(parts, finalEvent(model.Part{
		Type: model.PartTypeToolCall, ToolCallID: "t1", Order: 2, State: "completed",
	}))

	require.Len(t, parts, 1)
	assert.Equal(t, "completed", parts[0].State)
}

func TestMergeFinalAppendsWhenUnmatched(t *testing.T) {
	parts := []model.Part{model.TextPart("p1", 0, "text")}
	parts = Merge(parts, finalEvent(model.Part{
		Type: model.PartTypeFile, ID: "f1", Order: 1,
		MediaType: "application/pdf", Filename: "notes.pdf",
	}))

	require.Len(t, parts, 2)
	assert.Equal(t, model.PartTypeFile, parts[1].Type)
}

func TestMergeObjectDeltaDropsDuplicates(t *testing.T) {
	toolCall := model.Part{Type: model.PartTypeToolCall, ToolCallID: "t1", Order: 1}

	parts := Merge(nil, partDelta(toolCall))
	parts = Merge(parts, partDelta(toolCall))

	require.Len(t, parts, 1)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	orig := []model.Part{model.TextPart("p1", 0, "Hi")}
	Merge(orig, textDelta("p1", " there"))
	Merge(orig, finalEvent(model.TextPart("p1", 0, "replaced")))

	assert.Equal(t, "Hi", orig[0].TextContent)
}

func TestMergeFullTurnScenario(t *testing.T) {
	events := []model.PartEvent{
		textDelta("p1", "Hi"),
		textDelta("p1", " there"),
		finalEvent(model.TextPart("p1", 0, "Hi there")),
	}

	var parts []model.Part
	for _, ev := range events {
		parts = Merge(parts, ev)
		require.Len(t, parts, 1, "no intermediate state may hold a duplicate")
	}
	assert.Equal(t, "Hi there", parts[0].TextContent)
}
