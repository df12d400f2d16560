// Package main is the StudyHall terminal chat client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/studyhall-ai/studyhall-go/internal/api"
	"github.com/studyhall-ai/studyhall-go/internal/auth"
	"github.com/studyhall-ai/studyhall-go/internal/config"
	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/internal/service"
	"github.com/studyhall-ai/studyhall-go/internal/store"
	"github.com/studyhall-ai/studyhall-go/internal/stream"
	"github.com/studyhall-ai/studyhall-go/pkg/logger"
	"github.com/studyhall-ai/studyhall-go/pkg/tracing"
)

func main() {
	projectID := flag.String("project", "", "project id")
	chatID := flag.String("chat", "", "chat id")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if *projectID == "" || *chatID == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: studyhall -project <id> -chat <id> <message>")
		os.Exit(2)
	}
	content := strings.Join(flag.Args(), " ")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "studyhall-client", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	tokens := auth.NewStaticTokenSource(cfg.APIToken)
	client := api.New(cfg.BaseURL, tokens,
		api.WithLogger(log),
		api.WithRequestTimeout(cfg.RequestTimeout))

	messages := store.NewMessageStore()
	status := store.NewStatusAtom()
	usage := store.NewUsageAtom()
	chat := service.NewChatService(client, messages, status, usage,
		stream.MalformedPolicy(cfg.ParsePolicy), log)

	// Print assistant text as it is assembled.
	snapshots, cancel := messages.Subscribe(*chatID)
	defer cancel()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		var written int
		for snap := range snapshots {
			text := assistantText(snap)
			if len(text) > written {
				fmt.Print(text[written:])
				written = len(text)
			}
		}
	}()

	result, err := chat.StreamMessage(ctx, *projectID, *chatID, content)
	cancel()
	<-printed
	fmt.Println()

	if err != nil {
		if result != nil && result.State == service.StateRateLimited {
			if u, ok := usage.Get(); ok {
				fmt.Fprintf(os.Stderr, "usage limit exceeded (%d/%d messages)\n",
					u.MessagesUsed, u.MessagesLimit)
			} else {
				fmt.Fprintln(os.Stderr, "usage limit exceeded")
			}
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "stream failed: %v\n", err)
		os.Exit(1)
	}

	if u, ok := usage.Get(); ok {
		fmt.Fprintf(os.Stderr, "%d messages remaining\n", u.Remaining())
	}
}

// assistantText concatenates the text parts of the last assistant message.
func assistantText(msgs []model.ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != model.RoleAssistant {
			continue
		}
		var b strings.Builder
		for _, p := range msgs[i].Parts {
			if p.Type == model.PartTypeText {
				b.WriteString(p.TextContent)
			}
		}
		return b.String()
	}
	return ""
}
