package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/fitrate/arena/internal/simulator"
)

// Default configuration constants.
const (
	defaultNumUsers     = 500
	defaultTopN         = 50
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 40
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numUsers     = flag.Int("users", defaultNumUsers, "Number of simulated users")
		topN         = flag.Int("top", defaultTopN, "Number of top entries to fetch from the leaderboard")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollInterval = flag.Duration("poll", defaultPollInterval, "Delay between queue polls")
		logFile      = flag.String("log", "", "Log file for simulation output (default: simulation_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	// Setup logging
	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simulator.Config{
		BaseURL:      *baseURL,
		NumUsers:     *numUsers,
		TopN:         *topN,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *pollInterval,
		MaxPolls:     defaultMaxPolls,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the simulation
	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
