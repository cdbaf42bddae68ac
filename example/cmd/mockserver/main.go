// Standalone mock of the search API for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/pearch run -c example/batch.yaml --listen :8080
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Pearch-ai/pearch/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	key := flag.String("key", "demo-key", "accepted API key")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fmt.Printf("Mock search API starting on %s (key %q)\n", *addr, *key)
	fmt.Println("Tasks report: pending → running → completed")
	fmt.Println("The query \"fail me\" reports: pending → failed")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	api := mockapi.New(*key,
		mockapi.WithQueryScript("fail me", "pending", "failed"),
		mockapi.WithLogger(logger),
	)

	if err := http.ListenAndServe(*addr, api); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
