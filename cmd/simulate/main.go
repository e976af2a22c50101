package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/scorekeep/scorekeep/internal/simulate"
	"github.com/scorekeep/scorekeep/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumPlayers = 500
	defaultBatchSize  = 100
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
	defaultMetrics    = "run1,run2,run3"
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPlayers = flag.Int("players", defaultNumPlayers, "Number of players to generate")
		metrics    = flag.String("metrics", defaultMetrics, "Comma-separated metric ids to score")
		batchSize  = flag.Int("batch", defaultBatchSize, "Events per submission batch")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:    *baseURL,
		NumPlayers: *numPlayers,
		Metrics:    strings.Split(*metrics, ","),
		BatchSize:  *batchSize,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
