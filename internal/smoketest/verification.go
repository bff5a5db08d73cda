package smoketest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/midwicket/pavilion/pkg/logger"
)

// verifyRankings fetches the leaderboard and checks each registered
// player's counters and earnings against the locally computed values.
func verifyRankings(ctx context.Context, config *Config, want map[int]expected, stats *Stats) error {
	logger.Get().Info(ctx, "verifying rankings")

	client := &http.Client{Timeout: config.Timeout}
	var resp rankingsResponse
	status, err := getJSON(ctx, client, config.BaseURL+"/api/rankings", &resp)
	if err != nil {
		return fmt.Errorf("fetch rankings: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("rankings fetch failed with status: %d", status)
	}
	stats.RankedPlayers = len(resp.Rankings)

	byPlayer := make(map[int]rankingEntry, len(resp.Rankings))
	for _, entry := range resp.Rankings {
		byPlayer[entry.Player.ID] = entry
	}

	for playerID, exp := range want {
		entry, ok := byPlayer[playerID]
		if !ok {
			stats.Mismatches++
			logger.Get().Warn(ctx, "player missing from rankings", logger.Int("playerID", playerID))
			continue
		}
		if entry.Stats.Runs != exp.runs ||
			entry.Stats.DotBalls != exp.dotBalls ||
			entry.Stats.WicketsTaken != exp.wickets ||
			entry.Stats.TotalEarnings != exp.earnings() {
			stats.Mismatches++
			logger.Get().Warn(ctx, "ranking mismatch",
				logger.Int("playerID", playerID),
				logger.Int("wantRuns", exp.runs),
				logger.Int("gotRuns", entry.Stats.Runs),
				logger.Int("wantEarnings", exp.earnings()),
				logger.Int("gotEarnings", entry.Stats.TotalEarnings))
		}
	}

	// The feed must be sorted descending by total earnings.
	for i := 1; i < len(resp.Rankings); i++ {
		if resp.Rankings[i].Stats.TotalEarnings > resp.Rankings[i-1].Stats.TotalEarnings {
			return fmt.Errorf("rankings not sorted: entry %d outranks entry %d", i, i-1)
		}
	}

	if stats.Mismatches > 0 {
		return fmt.Errorf("%d players had mismatched rankings", stats.Mismatches)
	}

	logger.Get().Info(ctx, "rankings verified", logger.Int("players", len(want)))
	return nil
}
