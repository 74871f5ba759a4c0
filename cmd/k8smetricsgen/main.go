package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcpd/internal/synth"
)

var (
	flagPods      int
	flagHTTPPort  int
	flagInterval  time.Duration
	flagAnomalies bool
	flagSeed      int64
)

var rootCmd = &cobra.Command{
	Use:   "k8smetricsgen",
	Short: "Serve synthetic Kubernetes container metrics in Prometheus format",
	Long: `k8smetricsgen simulates a fleet of Kubernetes pods and exposes
cAdvisor-shaped container metrics on /metrics for Prometheus to scrape.

Examples:
  k8smetricsgen --pods 50 --interval 10s
  k8smetricsgen --anomalies --seed 42`,
	RunE: runGenerator,
}

func init() {
	rootCmd.Flags().IntVar(&flagPods, "pods", 25, "Number of simulated pods")
	rootCmd.Flags().IntVar(&flagHTTPPort, "http-port", 9100, "Port to serve /metrics on")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 15*time.Second, "Time between metric updates")
	rootCmd.Flags().BoolVar(&flagAnomalies, "anomalies", false, "Periodically push one pod's memory out of range")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed (0 seeds from the clock)")
}

func runGenerator(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gen := synth.New(synth.Options{
		Pods:      flagPods,
		Interval:  flagInterval,
		Anomalies: flagAnomalies,
		Seed:      flagSeed,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", gen.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","pods":%d}`, gen.PodCount())
	})

	addr := fmt.Sprintf(":%d", flagHTTPPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go gen.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Int("pods", flagPods).
			Dur("interval", flagInterval).
			Bool("anomalies", flagAnomalies).
			Msg("serving synthetic metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-stop:
		logger.Info().Msg("shutting down")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
