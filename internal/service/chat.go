// Package service orchestrates streamed chat turns: it wires the decode,
// parse, and merge pipeline to the message store and drives the surrounding
// side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/studyhall-ai/studyhall-go/internal/api"
	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/internal/store"
	"github.com/studyhall-ai/studyhall-go/internal/stream"
	"github.com/studyhall-ai/studyhall-go/pkg/logger"
	"github.com/studyhall-ai/studyhall-go/pkg/metrics"
)

// StreamState is the lifecycle state of one streamed turn.
type StreamState string

const (
	StateIdle        StreamState = "idle"
	StateSending     StreamState = "sending"
	StateStreaming   StreamState = "streaming"
	StateCompleted   StreamState = "completed"
	StateFailed      StreamState = "failed"
	StateRateLimited StreamState = "rate_limited"
)

// Backend is the slice of the REST client the orchestrator needs.
type Backend interface {
	StreamMessage(ctx context.Context, projectID, chatID string, req model.SendMessageRequest) (io.ReadCloser, error)
	GetChat(ctx context.Context, projectID, chatID string) (*model.Chat, error)
	GetUsage(ctx context.Context) (*model.Usage, error)
}

// ChatService assembles streamed assistant replies into the message store.
// One call to StreamMessage runs the whole turn in the calling goroutine;
// independent chats may stream concurrently from separate goroutines.
type ChatService struct {
	backend Backend
	store   *store.MessageStore
	status  *store.StatusAtom
	usage   *store.UsageAtom
	policy  stream.MalformedPolicy
	logger  *logger.Logger
	tracer  trace.Tracer
}

// NewChatService creates a chat service.
func NewChatService(
	backend Backend,
	msgStore *store.MessageStore,
	status *store.StatusAtom,
	usage *store.UsageAtom,
	policy stream.MalformedPolicy,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		backend: backend,
		store:   msgStore,
		status:  status,
		usage:   usage,
		policy:  policy,
		logger:  log,
		tracer:  otel.Tracer("studyhall/chat"),
	}
}

// Result describes how a streamed turn ended.
type Result struct {
	State     StreamState
	SessionID string
	Done      bool
}

// StreamMessage sends one user message and assembles the streamed assistant
// reply. It appends the optimistic user message before the request goes out
// and removes it again when the request fails or is rate-limited; on success
// the locally assembled state is replaced by the canonical chat after the
// done event. Cancelling ctx stops consumption and leaves committed parts
// in place.
func (s *ChatService) StreamMessage(ctx context.Context, projectID, chatID, content string) (*Result, error) {
	session := stream.NewSession()
	log := s.logger.WithStream(session.ID(), projectID, chatID)

	ctx, span := s.tracer.Start(ctx, "chat.stream",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("project.id", projectID),
		),
	)
	defer span.End()

	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()
	start := time.Now()

	result := &Result{State: StateSending, SessionID: session.ID()}

	// Optimistic user turn under the sentinel id.
	s.store.Append(chatID, model.ChatMessage{
		ID:        model.SentinelMessageID,
		ChatID:    chatID,
		Role:      model.RoleUser,
		CreatedAt: time.Now(),
		Parts:     []model.Part{model.TextPart("", 0, content)},
	})

	body, err := s.backend.StreamMessage(ctx, projectID, chatID, model.SendMessageRequest{Content: content})
	if err != nil {
		s.store.RemoveSentinel(chatID)
		if errors.Is(err, api.ErrUsageLimit) {
			result.State = StateRateLimited
			metrics.RateLimitedTurns.Inc()
			metrics.RecordStream(string(StateRateLimited), time.Since(start).Seconds())
			s.refreshUsage(ctx, log)
			log.Warn("turn rejected by usage quota")
			return result, fmt.Errorf("send message: %w", err)
		}
		result.State = StateFailed
		metrics.RecordStream(string(StateFailed), time.Since(start).Seconds())
		log.Error("send failed", zap.Error(err))
		return result, fmt.Errorf("send message: %w", err)
	}
	defer body.Close()

	result.State = StateStreaming
	log.Debug("streaming started")

	if err := s.consume(ctx, chatID, session, body, log); err != nil {
		// Committed parts stay visible; only further consumption stops.
		result.State = StateFailed
		metrics.RecordStream(string(StateFailed), time.Since(start).Seconds())
		log.Error("stream aborted", zap.Error(err))
		return result, err
	}

	result.Done = session.Done()
	s.status.Clear(chatID)
	s.reconcile(ctx, projectID, chatID, log)
	s.refreshUsage(ctx, log)

	result.State = StateCompleted
	metrics.RecordStream(string(StateCompleted), time.Since(start).Seconds())
	log.Info("turn completed",
		zap.Bool("done_seen", session.Done()),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// consume runs the decode/parse/merge pipeline to the end of the body,
// committing every merge result against the latest store snapshot.
func (s *ChatService) consume(ctx context.Context, chatID string, session *stream.Session, body io.Reader, log *logger.Logger) error {
	parser := stream.NewEventParser(stream.NewFrameDecoder(body), s.policy)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := parser.Next()
		if err == io.EOF {
			if n := parser.Skipped(); n > 0 {
				log.Warn("malformed lines skipped", zap.Int("count", n))
			}
			return nil
		}
		if err != nil {
			return err
		}
		s.apply(chatID, session, ev)
	}
}

// apply folds one event into the store. Handlers re-read the current
// snapshot before computing the next one, so every commit builds on the
// last committed state.
func (s *ChatService) apply(chatID string, session *stream.Session, ev model.PartEvent) {
	if ev.Status != "" {
		session.SetStatus(ev.Status)
		s.status.Set(chatID, ev.Status)
	}
	if ev.StatusOnly() {
		metrics.RecordEvent("status")
		return
	}

	if session.Observe(ev.MessageID) {
		msg := model.ChatMessage{
			ID:        ev.MessageID,
			ChatID:    chatID,
			Role:      ev.Role,
			CreatedAt: ev.CreatedAt,
		}
		// The server's echo of the user turn supersedes the sentinel.
		if ev.Role == model.RoleUser {
			s.store.RemoveSentinel(chatID)
		}
		s.store.Append(chatID, msg)
	}

	cur, ok := s.store.Message(chatID, ev.MessageID)
	if !ok {
		return
	}
	merged := stream.Merge(cur.Parts, ev)
	if len(merged) > len(cur.Parts) {
		metrics.MergeAppends.Inc()
	}
	s.store.ReplaceParts(chatID, ev.MessageID, merged)

	if ev.Final() {
		session.MarkDone()
		metrics.RecordEvent("done")
	} else {
		metrics.RecordEvent("delta")
	}
}

// reconcile replaces the locally assembled messages with the canonical chat.
// The heuristic merge can diverge from server truth on ordering ties; this
// fetch is the convergence point.
func (s *ChatService) reconcile(ctx context.Context, projectID, chatID string, log *logger.Logger) {
	chat, err := s.backend.GetChat(ctx, projectID, chatID)
	if err != nil {
		log.Warn("reconciliation fetch failed", zap.Error(err))
		return
	}
	s.store.ReplaceWhole(chatID, chat.Messages)
}

func (s *ChatService) refreshUsage(ctx context.Context, log *logger.Logger) {
	usage, err := s.backend.GetUsage(ctx)
	if err != nil {
		log.Warn("usage refresh failed", zap.Error(err))
		return
	}
	s.usage.Set(*usage)
	metrics.UsageRefreshes.Inc()
}
