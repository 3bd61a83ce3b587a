// Spins up the chain server: named numeric linked lists behind the Redis protocol.

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nobletooth/chain/pkg/config"
	"github.com/nobletooth/chain/pkg/port"
	"github.com/nobletooth/chain/pkg/utils"
)

var printVersion = flag.Bool("print_version", false, "Print the version and exit.")

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Chain build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := port.NewListStoreFromFlags()
	if err != nil {
		slog.Error("Failed to create the list store.", "error", err)
		os.Exit(1)
	}

	metricsErr := make(chan error, 1)
	go func() { metricsErr <- port.ServeMetrics(ctx) }()

	serverErr := port.RunRedisServer(ctx, store)
	cancel() // Stops the metrics endpoint if the Redis server failed on its own.
	if err := errors.Join(serverErr, <-metricsErr); err != nil {
		slog.Error("Chain server stopped.", "error", err, "uptime", utils.Uptime())
		os.Exit(1)
	}
	slog.Info("Chain server stopped.", "uptime", utils.Uptime())
}
