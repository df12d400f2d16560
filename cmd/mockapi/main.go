// Package main runs the stub StudyHall API for local development.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studyhall-ai/studyhall-go/internal/apitest"
	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/pkg/logger"
)

func main() {
	log, err := logger.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := apitest.NewServer()
	srv.ChunkDelay = 150 * time.Millisecond
	srv.SetEvents(demoTurn()...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", srv.Handler(60))

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		log.Info("mock API listening on :" + port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error: " + err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}

// demoTurn scripts a short assistant reply with a cited source.
func demoTurn() []model.PartEvent {
	messageID := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC()
	text := func(s string) *model.Delta { return &model.Delta{Text: s} }

	return []model.PartEvent{
		{MessageID: messageID, Role: model.RoleAssistant, CreatedAt: now, Status: "thinking"},
		{MessageID: messageID, Role: model.RoleAssistant, CreatedAt: now, PartID: "p1", Delta: text("Photosynthesis converts ")},
		{MessageID: messageID, Role: model.RoleAssistant, CreatedAt: now, PartID: "p1", Delta: text("light energy into chemical energy.")},
		{MessageID: messageID, Role: model.RoleAssistant, CreatedAt: now, Delta: &model.Delta{Part: &model.Part{
			Type: model.PartTypeSourceDocument, SourceID: "doc-1", Order: 1,
			Title: "Biology 101, Ch. 4", Score: 0.92,
		}}},
		{MessageID: messageID, Role: model.RoleAssistant, CreatedAt: now, Done: true, Part: &model.Part{
			Type: model.PartTypeText, ID: "p1", Order: 0,
			TextContent: "Photosynthesis converts light energy into chemical energy.",
		}},
	}
}
