package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizforge-backend/internal/console"
	"quizforge-backend/internal/logger"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "quizforge API base URL")
	token := flag.String("token", os.Getenv("QUIZCTL_TOKEN"), "access token (defaults to $QUIZCTL_TOKEN)")
	timeout := flag.Duration("timeout", 10*time.Second, "HTTP timeout")
	env := flag.String("env", "production", "log format: production (JSON) or development")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "error: --token or QUIZCTL_TOKEN is required")
		os.Exit(1)
	}

	log, err := logger.New(*env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = console.Run(ctx, os.Stdin, os.Stdout, console.Config{
		ServerURL:   *server,
		Token:       *token,
		HTTPTimeout: *timeout,
		Logger:      log.With("component", "quizctl"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
