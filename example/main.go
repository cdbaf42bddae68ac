package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pearch-ai/pearch"
	"github.com/Pearch-ai/pearch/internal/mockapi"
	"github.com/Pearch-ai/pearch/internal/server"
	"github.com/Pearch-ai/pearch/internal/tracker"
)

const apiKey = "demo-key"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// in-process fake of the search API; one query is scripted to fail
	api := mockapi.New(apiKey,
		mockapi.WithQueryScript("platform engineers in Warsaw", "pending", "failed"),
		mockapi.WithLogger(logger),
	)
	go func() {
		if err := http.ListenAndServe("127.0.0.1:9999", api); err != nil {
			logger.Error("mock api error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	// 2 roles × 2 cities = 4 searches from one declaration
	items, err := pearch.NewQueryGrid(
		pearch.WithQueryTemplate("{{.role}} engineers in {{.city}}"),
		pearch.WithDimensions(map[string][]string{
			"role": {"backend", "platform"},
			"city": {"Lisbon", "Warsaw"},
		}),
		pearch.WithGridParams(pearch.Params{Limit: 10, Type: "fast", PollingInterval: 2, MaxWaitTime: 30}),
		pearch.WithGridFields("campaign", "demo"),
	)
	if err != nil {
		logger.Error("failed to build query grid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr := tracker.NewMemoryTracker()
	if err := server.NewServer(tr, "127.0.0.1:8080", logger).Start(ctx); err != nil {
		logger.Error("failed to start progress server", "error", err)
		os.Exit(1)
	}

	client, err := pearch.New(
		pearch.StaticCredentials{BaseURL: "http://127.0.0.1:9999", APIKey: apiKey},
		pearch.WithLogger(logger),
		pearch.WithTransitionCallback(func(t pearch.Transition) {
			rec := tracker.TaskRecord{
				Index:     t.Item,
				TaskID:    t.TaskID,
				Query:     t.Query,
				State:     t.To.String(),
				Status:    t.Status,
				Attempts:  t.Attempt,
				ElapsedMs: t.Elapsed.Milliseconds(),
				UpdatedAt: t.At,
			}
			if t.Err != nil {
				msg := t.Err.Error()
				rec.Error = &msg
			}
			tr.Update(rec)
		}),
	)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println()
	fmt.Println("  Pearch batch demo")
	fmt.Println("  Live progress: curl -N http://127.0.0.1:8080/api/sse")
	fmt.Println("  Snapshot:      curl http://127.0.0.1:8080/api/tasks")
	fmt.Println()

	results, err := client.RunBatch(ctx, items, pearch.WithContinueOnFail(true))
	if err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(out))
}
