package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

func userMsg(id, text string) model.ChatMessage {
	return model.ChatMessage{
		ID:    id,
		Role:  model.RoleUser,
		Parts: []model.Part{model.TextPart("", 0, text)},
	}
}

func TestMessageStoreAppendAndSnapshot(t *testing.T) {
	s := NewMessageStore()
	s.Append("c1", userMsg("m1", "hello"))

	msgs := s.Messages("c1")
	require.Len(t, msgs, 1)

	// Snapshots are copies; mutating one must not leak into the store.
	msgs[0].ID = "mutated"
	assert.Equal(t, "m1", s.Messages("c1")[0].ID)
}

func TestMessageStoreReplaceParts(t *testing.T) {
	s := NewMessageStore()
	s.Append("c1", userMsg("m1", "partial"))

	ok := s.ReplaceParts("c1", "m1", []model.Part{model.TextPart("p1", 0, "complete")})
	require.True(t, ok)
	assert.Equal(t, "complete", s.Messages("c1")[0].Parts[0].TextContent)

	assert.False(t, s.ReplaceParts("c1", "missing", nil))
}

func TestMessageStoreRemoveSentinel(t *testing.T) {
	s := NewMessageStore()
	s.Append("c1", userMsg(model.SentinelMessageID, "optimistic"))
	s.Append("c1", userMsg("m1", "real"))

	s.RemoveSentinel("c1")

	msgs := s.Messages("c1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)

	// Removing again is a no-op.
	s.RemoveSentinel("c1")
	assert.Len(t, s.Messages("c1"), 1)
}

func TestMessageStoreReplaceWhole(t *testing.T) {
	s := NewMessageStore()
	s.Append("c1", userMsg(model.SentinelMessageID, "local"))
	s.Append("c1", userMsg("m1", "assembled"))

	canonical := []model.ChatMessage{userMsg("u1", "question"), userMsg("a1", "answer")}
	s.ReplaceWhole("c1", canonical)

	msgs := s.Messages("c1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", msgs[0].ID)
	assert.Equal(t, "a1", msgs[1].ID)
}

func TestMessageStoreChatsAreIndependent(t *testing.T) {
	s := NewMessageStore()
	s.Append("c1", userMsg("m1", "one"))
	s.Append("c2", userMsg("m2", "two"))

	assert.Len(t, s.Messages("c1"), 1)
	assert.Len(t, s.Messages("c2"), 1)
	assert.Empty(t, s.Messages("c3"))
}

func TestMessageStoreSubscribeReceivesLatestSnapshot(t *testing.T) {
	s := NewMessageStore()
	ch, cancel := s.Subscribe("c1")
	defer cancel()

	s.Append("c1", userMsg("m1", "a"))
	// Two commits before the subscriber reads: only the latest survives.
	s.Append("c1", userMsg("m2", "b"))

	select {
	case snap := <-ch:
		require.Len(t, snap, 2)
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}

func TestMessageStoreSubscribeCancelClosesChannel(t *testing.T) {
	s := NewMessageStore()
	ch, cancel := s.Subscribe("c1")
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Commits after cancel must not panic.
	s.Append("c1", userMsg("m1", "a"))
	cancel()
}

func TestStatusAtom(t *testing.T) {
	a := NewStatusAtom()
	assert.Empty(t, a.Get("c1"))

	a.Set("c1", "thinking")
	assert.Equal(t, "thinking", a.Get("c1"))
	assert.Empty(t, a.Get("c2"))

	a.Clear("c1")
	assert.Empty(t, a.Get("c1"))
}

func TestUsageAtom(t *testing.T) {
	a := NewUsageAtom()
	_, ok := a.Get()
	assert.False(t, ok)

	a.Set(model.Usage{MessagesUsed: 48, MessagesLimit: 50})
	u, ok := a.Get()
	require.True(t, ok)
	assert.Equal(t, 2, u.Remaining())
}
