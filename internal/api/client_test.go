package api_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall-ai/studyhall-go/internal/api"
	"github.com/studyhall-ai/studyhall-go/internal/apitest"
	"github.com/studyhall-ai/studyhall-go/internal/auth"
	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/pkg/logger"
)

const (
	testProjectID = "0190a8a0-1111-7000-8000-000000000001"
	testChatID    = "0190a8a0-2222-7000-8000-000000000002"
)

func newTestClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	stub := apitest.NewServer()
	ts := httptest.NewServer(stub.Handler(0))
	t.Cleanup(ts.Close)

	client := api.New(ts.URL, auth.NewStaticTokenSource("test-token"),
		api.WithLogger(logger.NewNop()))
	return client, stub
}

func TestClientStreamMessageReturnsBody(t *testing.T) {
	client, stub := newTestClient(t)
	stub.SetChunks([]byte("data: {\"message_id\":\"m1\",\"delta\":\"Hi\"}\n"))

	body, err := client.StreamMessage(context.Background(), testProjectID, testChatID,
		model.SendMessageRequest{Content: "explain photosynthesis"})
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\"message_id\":\"m1\"")
}

func TestClientStreamMessageRateLimited(t *testing.T) {
	client, stub := newTestClient(t)
	stub.SetRateLimited(true)

	_, err := client.StreamMessage(context.Background(), testProjectID, testChatID,
		model.SendMessageRequest{Content: "hello"})
	assert.ErrorIs(t, err, api.ErrUsageLimit)
}

func TestClientStreamMessageRejectsEmptyContent(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.StreamMessage(context.Background(), testProjectID, testChatID,
		model.SendMessageRequest{})
	assert.Error(t, err)
}

func TestClientGetChat(t *testing.T) {
	client, stub := newTestClient(t)
	stub.SetChat(model.Chat{
		ID:        testChatID,
		ProjectID: testProjectID,
		Title:     "Biology",
		CreatedAt: time.Now().UTC(),
		Messages: []model.ChatMessage{
			{ID: "m1", ChatID: testChatID, Role: model.RoleAssistant,
				Parts: []model.Part{model.TextPart("p1", 0, "Hi there")}},
		},
	})

	chat, err := client.GetChat(context.Background(), testProjectID, testChatID)
	require.NoError(t, err)
	assert.Equal(t, "Biology", chat.Title)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "Hi there", chat.Messages[0].Parts[0].TextContent)
}

func TestClientGetUsage(t *testing.T) {
	client, stub := newTestClient(t)
	stub.SetUsage(model.Usage{MessagesUsed: 10, MessagesLimit: 50})

	usage, err := client.GetUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, usage.Remaining())
	assert.Equal(t, 1, stub.UsageCalls())
}
