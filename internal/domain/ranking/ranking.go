// Package ranking computes the career leaderboard and per-player profile
// statistics from score rows.
//
// Two earnings formulas live here on purpose: the leaderboard formula and
// the profile formula diverged in the original scoring rules and both are
// part of the observable contract. Keep them as separate named functions;
// do not unify them.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/midwicket/pavilion/internal/domain/types"
)

// Earnings rule constants.
const (
	runValue     = 5
	dotBallValue = 5
	wicketValue  = 50
	fourBonus    = 50
	sixBonus     = 100

	ballsPerOver = 6

	defaultConcurrency      = 4
	defaultRecentMatchLimit = 10
)

// PlayerGroup carries one player's summed score rows.
type PlayerGroup struct {
	PlayerID int
	Runs     int
	Fours    int
	Sixes    int
	Balls    int
	Extras   int
	Rows     int // count of score rows, used as the scoring-event proxy
}

// ScoreSource provides aggregate reads over the score rows.
type ScoreSource interface {
	// GroupedByPlayer returns one group per player with summed counters.
	GroupedByPlayer(ctx context.Context) ([]PlayerGroup, error)

	// PlayerTotals returns the group for one player. A player with no rows
	// yields a zero group, not an error.
	PlayerTotals(ctx context.Context, playerID int) (PlayerGroup, error)

	// CountDotBalls counts rows with zero runs and at least one ball faced.
	// When normalOnly is set, only NORMAL deliveries count; the profile
	// variant intentionally omits that filter.
	CountDotBalls(ctx context.Context, playerID int, normalOnly bool) (int, error)

	// CountWickets counts rows with isOut set and a non-null wicket type,
	// credited to the player in a bowling capacity.
	CountWickets(ctx context.Context, playerID int) (int, error)

	// DistinctMatchIDs returns the distinct match ids across the player's rows.
	DistinctMatchIDs(ctx context.Context, playerID int) ([]string, error)

	// RecentMatches returns the player's most recent per-match performances,
	// newest first, capped at limit.
	RecentMatches(ctx context.Context, playerID int, limit int) ([]types.MatchPerformance, error)
}

// UserDirectory resolves player display identities. A missing player
// resolves to (nil, nil); only store failures return an error.
type UserDirectory interface {
	FindPlayer(ctx context.Context, id int) (*types.Player, error)
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithConcurrency bounds concurrent per-player sub-queries.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithRecentMatchLimit sets how many recent matches a profile returns.
func WithRecentMatchLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.recentLimit = n
		}
	}
}

// Aggregator derives leaderboard and profile statistics. It is stateless
// and safe for concurrent use.
type Aggregator struct {
	scores      ScoreSource
	users       UserDirectory
	concurrency int
	recentLimit int
}

// New constructs an Aggregator over the given sources.
func New(scores ScoreSource, users UserDirectory, opts ...Option) *Aggregator {
	a := &Aggregator{
		scores:      scores,
		users:       users,
		concurrency: defaultConcurrency,
		recentLimit: defaultRecentMatchLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Formula describes the leaderboard earnings rules for display.
func (a *Aggregator) Formula() types.EarningsFormula {
	return types.EarningsFormula{
		RunValue:     runValue,
		DotBallValue: dotBallValue,
		WicketValue:  wicketValue,
		Description: fmt.Sprintf(
			"batsman: %d per run minus %d per dot ball; bowler: %d per wicket",
			runValue, dotBallValue, wicketValue),
	}
}

// Leaderboard produces the full ranked leaderboard, sorted descending by
// total earnings. Players without a user-directory entry are dropped
// silently. Any store failure fails the whole computation; no partial
// results are returned.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]types.RankingEntry, error) {
	groups, err := a.scores.GroupedByPlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("load score groups: %w", err)
	}

	// Ascending player id before the earnings sort keeps ties, and thus
	// re-runs over unchanged data, deterministic.
	sort.Slice(groups, func(i, j int) bool { return groups[i].PlayerID < groups[j].PlayerID })

	entries := make([]*types.RankingEntry, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, group := range groups {
		g.Go(func() error {
			entry, err := a.buildEntry(gctx, group)
			if err != nil {
				return err
			}
			entries[i] = entry // nil when the player has no directory entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]types.RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			ranked = append(ranked, *e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.TotalEarnings > ranked[j].Stats.TotalEarnings
	})
	return ranked, nil
}

// buildEntry resolves one player's identity and derived statistics. The
// dot-ball count, wicket count, and distinct-match lookup are independent
// reads and run concurrently; one failure fails the entry.
func (a *Aggregator) buildEntry(ctx context.Context, group PlayerGroup) (*types.RankingEntry, error) {
	var (
		dotBalls int
		wickets  int
		matches  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.scores.CountDotBalls(gctx, group.PlayerID, true)
		if err != nil {
			return fmt.Errorf("count dot balls for player %d: %w", group.PlayerID, err)
		}
		dotBalls = n
		return nil
	})
	g.Go(func() error {
		n, err := a.scores.CountWickets(gctx, group.PlayerID)
		if err != nil {
			return fmt.Errorf("count wickets for player %d: %w", group.PlayerID, err)
		}
		wickets = n
		return nil
	})
	g.Go(func() error {
		ids, err := a.scores.DistinctMatchIDs(gctx, group.PlayerID)
		if err != nil {
			return fmt.Errorf("distinct matches for player %d: %w", group.PlayerID, err)
		}
		matches = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	player, err := a.users.FindPlayer(ctx, group.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("resolve player %d: %w", group.PlayerID, err)
	}
	if player == nil {
		// Score rows referencing an unknown player are tolerated: the
		// stores share ids without referential integrity.
		return nil, nil
	}

	stats := deriveStats(group, dotBalls, wickets, len(matches))
	return &types.RankingEntry{Player: *player, Stats: stats}, nil
}

// deriveStats applies the leaderboard formulas to one player's totals.
func deriveStats(g PlayerGroup, dotBalls, wickets, matches int) types.PlayerStats {
	batsman := leaderboardEarnings(g.Runs, dotBalls)
	bowler := wickets * wicketValue

	var strikeRate, average, economy float64
	if g.Balls > 0 {
		strikeRate = round2(float64(g.Runs) / float64(g.Balls) * 100)
		economy = round2(float64(g.Extras) / (float64(g.Balls) / ballsPerOver))
	}
	if matches > 0 {
		average = round2(float64(g.Runs) / float64(matches))
	}

	return types.PlayerStats{
		Runs:            g.Runs,
		Fours:           g.Fours,
		Sixes:           g.Sixes,
		Balls:           g.Balls,
		DotBalls:        dotBalls,
		WicketsTaken:    wickets,
		Matches:         matches,
		StrikeRate:      strikeRate,
		Average:         average,
		Economy:         economy,
		BatsmanEarnings: batsman,
		BowlerEarnings:  bowler,
		TotalEarnings:   batsman + bowler,
	}
}

// leaderboardEarnings is the leaderboard batting formula.
func leaderboardEarnings(runs, dotBalls int) int {
	return runs*runValue - dotBalls*dotBallValue
}

// profileEarnings is the profile formula. It rewards boundaries directly
// and differs from leaderboardEarnings; see the package comment.
func profileEarnings(runs, fours, sixes, dotBalls int) int {
	return runs*runValue + fours*fourBonus + sixes*sixBonus - dotBalls*dotBallValue
}

// Profile produces the single-player aggregation with the player's most
// recent matches. Returns ErrPlayerNotFound when the player has no
// directory entry.
func (a *Aggregator) Profile(ctx context.Context, playerID int) (types.PlayerProfile, error) {
	player, err := a.users.FindPlayer(ctx, playerID)
	if err != nil {
		return types.PlayerProfile{}, fmt.Errorf("resolve player %d: %w", playerID, err)
	}
	if player == nil {
		return types.PlayerProfile{}, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
	}

	totals, err := a.scores.PlayerTotals(ctx, playerID)
	if err != nil {
		return types.PlayerProfile{}, fmt.Errorf("player totals for %d: %w", playerID, err)
	}
	// The profile dot-ball count deliberately skips the NORMAL-only filter.
	dotBalls, err := a.scores.CountDotBalls(ctx, playerID, false)
	if err != nil {
		return types.PlayerProfile{}, fmt.Errorf("count dot balls for player %d: %w", playerID, err)
	}
	matchIDs, err := a.scores.DistinctMatchIDs(ctx, playerID)
	if err != nil {
		return types.PlayerProfile{}, fmt.Errorf("distinct matches for player %d: %w", playerID, err)
	}
	recent, err := a.scores.RecentMatches(ctx, playerID, a.recentLimit)
	if err != nil {
		return types.PlayerProfile{}, fmt.Errorf("recent matches for player %d: %w", playerID, err)
	}
	if recent == nil {
		recent = []types.MatchPerformance{}
	}

	return types.PlayerProfile{
		Player: *player,
		Stats: types.ProfileStats{
			Runs:     totals.Runs,
			Balls:    totals.Balls,
			Fours:    totals.Fours,
			Sixes:    totals.Sixes,
			DotBalls: dotBalls,
			Matches:  len(matchIDs),
			Earnings: profileEarnings(totals.Runs, totals.Fours, totals.Sixes, dotBalls),
		},
		RecentMatches: recent,
	}, nil
}

// round2 rounds to two decimal places, matching the documented precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
