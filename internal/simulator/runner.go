package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/fitrate/arena/pkg/logger"
)

// Run executes the complete arena simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting arena simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("users", config.NumUsers),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the simulated population
	personas := generatePersonas(ctx, config, stats)

	// Step 3: Run the sessions concurrently
	runSessions(ctx, config, personas, stats)

	// Step 4: Let in-flight awards land
	logger.Get().Info(ctx, "waiting for sessions to settle")
	time.Sleep(SettleDelay)

	// Step 5: Fetch the weekly leaderboard
	board, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 6: Fetch war standings
	standings, err := getStandings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("standings retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(ctx, config, board, standings, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var joinSuccessRate, sessionsPerSecond float64

	total := stats.JoinsSubmitted + stats.JoinsFailed
	if total > 0 {
		joinSuccessRate = float64(stats.JoinsSubmitted) / float64(total) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.UsersGenerated) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("usersGenerated", stats.UsersGenerated),
		logger.Int("joinsSubmitted", stats.JoinsSubmitted),
		logger.Int("joinsFailed", stats.JoinsFailed),
		logger.Int("matchesLive", stats.MatchesLive),
		logger.Int("matchesGhost", stats.MatchesGhost),
		logger.Int("matchesImmediate", stats.MatchesImmediate),
		logger.Int("queueExpired", stats.QueueExpired),
		logger.Int("warContributions", stats.WarContributions),
		logger.Int("warFailed", stats.WarFailed),
		logger.Int("leaderboardRows", stats.LeaderboardRows),
		logger.Int("standingsReported", stats.StandingsReported),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("joinSuccessRate", joinSuccessRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}
