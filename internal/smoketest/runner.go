package smoketest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/midwicket/pavilion/pkg/logger"
)

// Run executes the complete end-to-end smoke test against a live service:
// register players, create a match, submit an innings per player, then
// verify the rankings against locally computed earnings.
func Run(ctx context.Context, config *Config) error {
	if config.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting pavilion smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("ballsPerPlayer", config.BallsPerPlayer),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	matchID, err := createMatch(ctx, config)
	if err != nil {
		return fmt.Errorf("match creation failed: %w", err)
	}

	players, err := registerPlayers(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("player registration failed: %w", err)
	}

	subs, want, err := generateBalls(ctx, config, players, stats)
	if err != nil {
		return fmt.Errorf("ball generation failed: %w", err)
	}

	if err := submitBalls(ctx, config, matchID, subs, stats); err != nil {
		return fmt.Errorf("ball submission failed: %w", err)
	}

	if err := verifyRankings(ctx, config, want, stats); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "smoke test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := &http.Client{Timeout: config.Timeout}
	status, err := getJSON(ctx, client, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// createMatch logs in as the admin account and creates the smoke test match.
func createMatch(ctx context.Context, config *Config) (string, error) {
	client, err := newSessionClient(config.Timeout)
	if err != nil {
		return "", err
	}

	status, err := postJSON(ctx, client, config.BaseURL+"/api/auth/login", map[string]string{
		"email":    config.AdminEmail,
		"password": config.AdminPassword,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("admin login failed with status: %d", status)
	}

	var match struct {
		ID string `json:"id"`
	}
	status, err = postJSON(ctx, client, config.BaseURL+"/api/matches", map[string]any{
		"title": "smoke test " + time.Now().Format("20060102_150405"),
		"venue": "test ground",
	}, &match)
	if err != nil {
		return "", fmt.Errorf("create match: %w", err)
	}
	if status != http.StatusCreated || match.ID == "" {
		return "", fmt.Errorf("match creation failed with status: %d", status)
	}

	logger.Get().Info(ctx, "match created", logger.String("matchID", match.ID))
	return match.ID, nil
}

// registerPlayers creates one account per player, keeping each session's
// cookies for authenticated ball submission.
func registerPlayers(ctx context.Context, config *Config, stats *Stats) ([]*player, error) {
	logger.Get().Info(ctx, "registering players", logger.Int("count", config.NumPlayers))

	suffix := time.Now().UnixNano()
	players := make([]*player, 0, config.NumPlayers)
	for i := 0; i < config.NumPlayers; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during registration: %w", ctx.Err())
		default:
		}

		client, err := newSessionClient(config.Timeout)
		if err != nil {
			return nil, err
		}

		p := &player{
			Name:   fmt.Sprintf("smoke-player-%d", i+1),
			Email:  fmt.Sprintf("smoke-%d-%d@test.example", suffix, i+1),
			client: client,
		}
		var created struct {
			ID int `json:"id"`
		}
		status, err := postJSON(ctx, client, config.BaseURL+"/api/auth/register", map[string]string{
			"name":     p.Name,
			"email":    p.Email,
			"password": "smoke-test-pass",
		}, &created)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", p.Name, err)
		}
		if status != http.StatusCreated || created.ID == 0 {
			return nil, fmt.Errorf("registration of %s failed with status: %d", p.Name, status)
		}
		p.ID = created.ID
		players = append(players, p)
	}

	stats.PlayersRegistered = len(players)
	logger.Get().Info(ctx, "players registered", logger.Int("count", len(players)))
	return players, nil
}

// displayFinalStats prints the final smoke test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, ballsPerSecond float64
	if stats.BallsSubmitted > 0 {
		successRate = float64(stats.BallsSuccessful) / float64(stats.BallsSubmitted) * 100
	}
	if stats.Duration > 0 {
		ballsPerSecond = float64(stats.BallsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersRegistered", stats.PlayersRegistered),
		logger.Int("ballsGenerated", stats.BallsGenerated),
		logger.Int("ballsSubmitted", stats.BallsSubmitted),
		logger.Int("ballsSuccessful", stats.BallsSuccessful),
		logger.Int("ballsDuplicate", stats.BallsDuplicate),
		logger.Int("ballsFailed", stats.BallsFailed),
		logger.Int("rankedPlayers", stats.RankedPlayers),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("ballsPerSecond", ballsPerSecond))
}
