package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dubstudio/internal/services"
)

// exitCancelled is the conventional status for a run stopped by SIGINT.
const exitCancelled = 130

func main() {
	_ = godotenv.Load() // best-effort: credentials may live in ./.env

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on stderr. Cancellation gets its own wording and
// status so scripts can tell an interrupted run from a failed one.
func exitCode(err error, stderr io.Writer) int {
	switch services.Outcome(err) {
	case services.ResultCompleted:
		return 0
	case services.ResultCancelled:
		fmt.Fprintln(stderr, "Cancelled:", err)
		return exitCancelled
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}
