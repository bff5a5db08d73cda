// Package types contains the read shapes returned by the API. Field names
// are part of the wire contract with existing clients and must not change.
package types

import (
	"time"

	"github.com/midwicket/pavilion/internal/domain/model"
)

// Player is the display identity attached to a ranking entry.
type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PlayerStats carries the leaderboard metrics for one player.
type PlayerStats struct {
	Runs            int     `json:"runs"`
	Fours           int     `json:"fours"`
	Sixes           int     `json:"sixes"`
	Balls           int     `json:"balls"`
	DotBalls        int     `json:"dotBalls"`
	WicketsTaken    int     `json:"wicketsTaken"`
	Matches         int     `json:"matches"`
	StrikeRate      float64 `json:"strikeRate"`
	Average         float64 `json:"average"`
	Economy         float64 `json:"economy"`
	BatsmanEarnings int     `json:"batsmanEarnings"`
	BowlerEarnings  int     `json:"bowlerEarnings"`
	TotalEarnings   int     `json:"totalEarnings"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Player Player      `json:"player"`
	Stats  PlayerStats `json:"stats"`
}

// Rankings is the GET /api/rankings response body.
type Rankings struct {
	Rankings        []RankingEntry  `json:"rankings"`
	EarningsFormula EarningsFormula `json:"earningsFormula"`
}

// EarningsFormula is the static description of the leaderboard earnings
// rules, returned alongside the rankings for display.
type EarningsFormula struct {
	RunValue     int    `json:"runValue"`
	DotBallValue int    `json:"dotBallValue"`
	WicketValue  int    `json:"wicketValue"`
	Description  string `json:"description"`
}

// ProfileStats carries the single-player profile metrics. The profile
// earnings formula differs from the leaderboard one on purpose.
type ProfileStats struct {
	Runs     int `json:"runs"`
	Balls    int `json:"balls"`
	Fours    int `json:"fours"`
	Sixes    int `json:"sixes"`
	DotBalls int `json:"dotBalls"`
	Matches  int `json:"matches"`
	Earnings int `json:"earnings"`
}

// MatchPerformance is one of the profile's recent-match rows.
type MatchPerformance struct {
	MatchID string `json:"matchId"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls"`
	Fours   int    `json:"fours"`
	Sixes   int    `json:"sixes"`
}

// PlayerProfile is the GET /api/players/{id}/profile response body.
type PlayerProfile struct {
	Player        Player             `json:"player"`
	Stats         ProfileStats       `json:"stats"`
	RecentMatches []MatchPerformance `json:"recentMatches"`
}

// MatchStats carries the running totals derived from a match's log documents.
type MatchStats struct {
	TotalBalls   int        `json:"totalBalls"`
	TotalRuns    int        `json:"totalRuns"`
	TotalExtras  int        `json:"totalExtras"`
	TotalWickets int        `json:"totalWickets"`
	Boundaries   int        `json:"boundaries"`
	Sixes        int        `json:"sixes"`
	CurrentOver  int        `json:"currentOver"`
	LastBall     *model.Log `json:"lastBall"`
}

// MatchLogs is the GET /api/logs response body.
type MatchLogs struct {
	Stats     MatchStats  `json:"stats"`
	Logs      []model.Log `json:"logs"`
	TotalLogs int         `json:"totalLogs"`
}

// CommentaryEntry is the compact projection used by the commentary feed.
// No field outside this list may leak into the feed.
type CommentaryEntry struct {
	Over       int       `json:"over"`
	Ball       int       `json:"ball"`
	Runs       int       `json:"runs"`
	Action     string    `json:"action"`
	Commentary string    `json:"commentary"`
	IsWicket   bool      `json:"isWicket"`
	WicketType *string   `json:"wicketType"`
	Timestamp  time.Time `json:"timestamp"`
}
