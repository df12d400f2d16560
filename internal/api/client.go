package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall-go/internal/auth"
	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/pkg/logger"
)

// Client talks to the StudyHall REST API. Streaming requests return the raw
// body for the assembler; everything else is plain request/response JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenSource
	logger     *logger.Logger
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. The streaming
// endpoint needs a client without an overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the client logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// WithRequestTimeout bounds plain request/response calls. Streaming requests
// are unaffected; they are bounded only by their context.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the given base URL.
func New(baseURL string, tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger.Global(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		// No Timeout: a streamed reply can be read for longer than any
		// sane request timeout. Callers bound streams via context.
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Transport == nil || !isLoggingTransport(c.httpClient.Transport) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = &loggingTransport{base: base, log: c.logger}
	}
	return c
}

func isLoggingTransport(rt http.RoundTripper) bool {
	_, ok := rt.(*loggingTransport)
	return ok
}

// StreamMessage posts the outgoing user message and returns the raw SSE
// body. A 429 maps to ErrUsageLimit; any other non-2xx is returned as *Error.
func (c *Client) StreamMessage(ctx context.Context, projectID, chatID string, req model.SendMessageRequest) (io.ReadCloser, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	if err := ValidateChatID(chatID); err != nil {
		return nil, err
	}
	if err := ValidateMessageContent(req.Content); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/v1/projects/%s/chats/%s/messages/stream", projectID, chatID)
	httpReq, err := c.newRequest(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrUsageLimit
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp.Body, nil
}

// GetChat fetches the canonical chat, including all messages. This is the
// reconciliation read after a stream completes.
func (c *Client) GetChat(ctx context.Context, projectID, chatID string) (*model.Chat, error) {
	var chat model.Chat
	path := fmt.Sprintf("/api/v1/projects/%s/chats/%s", projectID, chatID)
	if err := c.do(ctx, http.MethodGet, path, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateChat creates a new chat in a project.
func (c *Client) CreateChat(ctx context.Context, projectID string, req model.CreateChatRequest) (*model.Chat, error) {
	if err := ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	var chat model.Chat
	path := fmt.Sprintf("/api/v1/projects/%s/chats", projectID)
	if err := c.do(ctx, http.MethodPost, path, req, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats lists the chats in a project.
func (c *Client) ListChats(ctx context.Context, projectID string) (*model.ListChatsResponse, error) {
	var out model.ListChatsResponse
	path := fmt.Sprintf("/api/v1/projects/%s/chats", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChat deletes a chat and its messages.
func (c *Client) DeleteChat(ctx context.Context, projectID, chatID string) error {
	path := fmt.Sprintf("/api/v1/projects/%s/chats/%s", projectID, chatID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetUsage fetches the account quota view.
func (c *Client) GetUsage(ctx context.Context) (*model.Usage, error) {
	var usage model.Usage
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrUsageLimit
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return responseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError builds an *Error from a non-2xx response, reading the
// backend's error body when it has one.
func responseError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
