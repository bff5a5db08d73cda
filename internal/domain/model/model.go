// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Ball types recorded on a score row. NORMAL deliveries are the only ones
// that can count as dot balls on the leaderboard.
const (
	BallTypeNormal = "NORMAL"
	BallTypeWide   = "WIDE"
	BallTypeNoBall = "NO_BALL"
	BallTypeBye    = "BYE"
	BallTypeLegBye = "LEG_BYE"
)

// User is a league member. Players are users with the player role.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // player|admin
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Team groups players for team matches.
type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CaptainID int       `json:"captainId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is one scheduled or played game.
type Match struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Venue      string    `json:"venue"`
	Status     string    `json:"status"` // scheduled|live|finished
	HomeTeamID int       `json:"homeTeamId"`
	AwayTeamID int       `json:"awayTeamId"`
	StartsAt   time.Time `json:"startsAt"`
}

// Product is merchandise sold through the platform.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"priceCents"`
	Stock       int    `json:"stock"`
}

// Score is one persisted record of a player's contribution on a delivery,
// read-only in the aggregation path. All counters are non-negative.
type Score struct {
	ID         int     `json:"id"`
	PlayerID   int     `json:"playerId"`
	MatchID    string  `json:"matchId"`
	Runs       int     `json:"runs"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	Balls      int     `json:"balls"`
	Extras     int     `json:"extras"`
	IsOut      bool    `json:"isOut"`
	WicketType *string `json:"wicketType"`
	BallType   string  `json:"ballType"`
}

// IsDotBall reports whether the row is a dot ball: no runs off the bat on a
// NORMAL delivery with at least one legal ball bowled.
func (s Score) IsDotBall() bool {
	return s.Runs == 0 && s.Balls > 0 && s.BallType == BallTypeNormal
}

// Log is one persisted ball-level or screenshot event scoped to a single
// match. Immutable once stored except for screenshot deletion.
type Log struct {
	ID         string     `json:"id"`
	MatchID    string     `json:"matchId"`
	PlayerID   int        `json:"playerId"`
	Action     string     `json:"action"`
	Runs       int        `json:"runs"`
	Over       int        `json:"over"`
	Ball       int        `json:"ball"`
	Commentary string     `json:"commentary"`
	Extras     int        `json:"extras"`
	IsWicket   bool       `json:"isWicket"`
	WicketType *string    `json:"wicketType"`
	BowlerID   *int       `json:"bowlerId"`
	FielderID  *int       `json:"fielderId"`
	Payload    LogPayload `json:"payload,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
