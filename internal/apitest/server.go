// Package apitest provides a stub StudyHall API server for integration
// tests and local development. Streams are scripted: each scripted chunk is
// written and flushed separately, so clients see real chunk boundaries.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/studyhall-ai/studyhall-go/internal/model"
)

// Server is a scriptable fake of the StudyHall backend.
type Server struct {
	mu sync.Mutex

	// Chunks are written one per flush to the next stream request. Set
	// SetChunks before issuing the request.
	chunks [][]byte

	// Canonical chat returned by the reconciliation GET.
	chat model.Chat

	// RateLimited forces 429 on the stream endpoint.
	rateLimited bool

	usage      model.Usage
	usageCalls int64

	// ChunkDelay inserts a pause between chunk writes.
	ChunkDelay time.Duration
}

// NewServer creates an empty stub server.
func NewServer() *Server {
	return &Server{
		usage: model.Usage{MessagesUsed: 1, MessagesLimit: 50},
	}
}

// SetChunks scripts the raw bytes of the next stream response.
func (s *Server) SetChunks(chunks ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
}

// SetEvents scripts the next stream response from events, one SSE frame per
// chunk.
func (s *Server) SetEvents(events ...model.PartEvent) {
	chunks := make([][]byte, 0, len(events))
	for _, ev := range events {
		buf, err := json.Marshal(ev)
		if err != nil {
			panic(fmt.Sprintf("apitest: marshal event: %v", err))
		}
		chunks = append(chunks, []byte("data: "+string(buf)+"\n"))
	}
	s.SetChunks(chunks...)
}

// SetChat sets the canonical chat served by the reconciliation GET.
func (s *Server) SetChat(chat model.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = chat
}

// SetRateLimited toggles 429 responses on the stream endpoint.
func (s *Server) SetRateLimited(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimited = v
}

// SetUsage sets the usage view.
func (s *Server) SetUsage(u model.Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = u
}

// UsageCalls reports how many times the usage endpoint was hit.
func (s *Server) UsageCalls() int {
	return int(atomic.LoadInt64(&s.usageCalls))
}

// Handler builds the chi router. Middleware mirrors the production API so
// clients are tested against realistic cross-origin and rate-limit
// behavior; requestLimit bounds requests per minute per client.
func (s *Server) Handler(requestLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if requestLimit > 0 {
		r.Use(httprate.Limit(
			requestLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded","retry_after":60}`))
			}),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/usage", s.handleUsage)
		r.Route("/projects/{projectID}/chats/{chatID}", func(r chi.Router) {
			r.Get("/", s.handleGetChat)
			r.Post("/messages/stream", s.handleStream)
		})
	})
	return r
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rateLimited := s.rateLimited
	chunks := s.chunks
	s.mu.Unlock()

	if rateLimited {
		writeError(w, http.StatusTooManyRequests, "usage limit exceeded")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for _, chunk := range chunks {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		w.Write(chunk)
		flusher.Flush()
		if s.ChunkDelay > 0 {
			time.Sleep(s.ChunkDelay)
		}
	}
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	chat := s.chat
	s.mu.Unlock()
	if chat.ID == "" {
		chat.ID = chi.URLParam(r, "chatID")
		chat.ProjectID = chi.URLParam(r, "projectID")
	}
	writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&s.usageCalls, 1)
	s.mu.Lock()
	usage := s.usage
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, usage)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
