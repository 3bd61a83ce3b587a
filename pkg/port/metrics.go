package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsAddress = flag.String("metrics_address", "",
		"The ip:port serving Prometheus metrics on /metrics; empty disables the metrics endpoint.")

	commandsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "list_commands_total",
		Help: "Total number of handled Redis commands.",
	}, []string{
		"command", // Upper-cased command name, or "UNKNOWN".
		"status",  // ok | error
	})
	storedLists = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lists_stored",
		Help: "Number of non-empty lists currently kept in the store.",
	})
)

// ServeMetrics serves the default Prometheus registry on --metrics_address until `ctx` is done.
func ServeMetrics(ctx context.Context) error {
	if *metricsAddress == "" {
		slog.Info("Metrics endpoint is disabled.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: *metricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serverErrSignal := make(chan error, 1)
	go func() {
		slog.Info("Serving metrics.", "address", *metricsAddress)
		serverErrSignal <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		return nil
	case err := <-serverErrSignal:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server stopped unexpectedly: %w", err)
	}
}
