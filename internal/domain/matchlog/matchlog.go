// Package matchlog derives running totals and commentary feeds from a
// match's ball-by-ball log documents.
package matchlog

import (
	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/types"
)

// Runs values that count as boundary events.
const (
	boundaryRuns = 4
	sixRuns      = 6
)

// Stats computes the running totals for one match. Logs must be sorted
// ascending by (over, ball, timestamp); the last document becomes lastBall.
// An empty slice yields zeroed totals and a nil lastBall.
func Stats(logs []model.Log) types.MatchStats {
	stats := types.MatchStats{TotalBalls: len(logs)}
	for i := range logs {
		l := &logs[i]
		stats.TotalRuns += l.Runs
		stats.TotalExtras += l.Extras
		if l.IsWicket {
			stats.TotalWickets++
		}
		switch l.Runs {
		case boundaryRuns:
			stats.Boundaries++
		case sixRuns:
			stats.Sixes++
		}
		if l.Over > stats.CurrentOver {
			stats.CurrentOver = l.Over
		}
	}
	if len(logs) > 0 {
		stats.LastBall = &logs[len(logs)-1]
	}
	return stats
}

// Commentary projects log documents to the compact commentary shape. The
// input order is preserved; callers fetch descending for latest-first feeds.
func Commentary(logs []model.Log) []types.CommentaryEntry {
	entries := make([]types.CommentaryEntry, len(logs))
	for i, l := range logs {
		entries[i] = types.CommentaryEntry{
			Over:       l.Over,
			Ball:       l.Ball,
			Runs:       l.Runs,
			Action:     l.Action,
			Commentary: l.Commentary,
			IsWicket:   l.IsWicket,
			WicketType: l.WicketType,
			Timestamp:  l.Timestamp,
		}
	}
	return entries
}
