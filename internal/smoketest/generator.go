package smoketest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/midwicket/pavilion/pkg/logger"
)

// Delivery outcome cases, weighted towards singles and dots like a real
// innings.
const (
	caseDotBall  = 0
	caseSingle   = 1
	caseDouble   = 2
	caseBoundary = 3
	caseSix      = 4
	caseWide     = 5
	caseWicket   = 6

	outcomeCases = 7
	ballsPerOver = 6
)

func randomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// expected carries the locally computed counters the rankings must match.
type expected struct {
	runs     int
	dotBalls int
	wickets  int
}

// earnings applies the leaderboard formula to the expected counters.
func (e expected) earnings() int {
	return e.runs*5 - e.dotBalls*5 + e.wickets*50
}

// generateBalls produces one innings worth of submissions per player and
// the per-player counters the final rankings are verified against.
func generateBalls(ctx context.Context, config *Config, players []*player, stats *Stats) ([]submission, map[int]expected, error) {
	logger.Get().Info(ctx, "generating balls",
		logger.Int("players", len(players)),
		logger.Int("ballsPerPlayer", config.BallsPerPlayer))

	var subs []submission
	want := make(map[int]expected, len(players))

	for _, p := range players {
		exp := expected{}
		for i := 0; i < config.BallsPerPlayer; i++ {
			select {
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("context cancelled during ball generation: %w", ctx.Err())
			default:
			}

			b := generateSingleBall(p.ID, i)
			exp.runs += b.Runs
			if b.Runs == 0 && b.Balls > 0 && b.BallType == "NORMAL" {
				exp.dotBalls++
			}
			if b.IsOut && b.WicketType != nil {
				exp.wickets++
			}
			subs = append(subs, submission{player: p, ball: b})
		}
		want[p.ID] = exp
	}

	stats.BallsGenerated = len(subs)
	logger.Get().Info(ctx, "generated balls successfully", logger.Int("count", len(subs)))
	return subs, want, nil
}

// generateSingleBall creates one delivery for the player's innings.
func generateSingleBall(playerID, seq int) ball {
	b := ball{
		EventID:  fmt.Sprintf("smoke_%d_%d", playerID, seq),
		PlayerID: playerID,
		Over:     seq / ballsPerOver,
		Ball:     seq%ballsPerOver + 1,
		Balls:    1,
		BallType: "NORMAL",
	}

	switch randomInt(outcomeCases) {
	case caseDotBall:
		b.Commentary = "defended back to the bowler"
	case caseSingle:
		b.Runs = 1
		b.Commentary = "worked away for a single"
	case caseDouble:
		b.Runs = 2
		b.Commentary = "two with a quick turnaround"
	case caseBoundary:
		b.Runs = 4
		b.Fours = 1
		b.Commentary = "driven through the covers for four"
	case caseSix:
		b.Runs = 6
		b.Sixes = 1
		b.Commentary = "launched over long-on"
	case caseWide:
		b.Balls = 0
		b.Extras = 1
		b.BallType = "WIDE"
		b.Commentary = "sprayed down the leg side"
	case caseWicket:
		wicketType := "bowled"
		b.IsOut = true
		b.WicketType = &wicketType
		b.Commentary = "through the gate, timber"
	}
	return b
}
