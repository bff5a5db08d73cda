package smoketest

import "time"

// Config holds configuration for the smoke test.
type Config struct {
	BaseURL        string        // Base URL of the service
	AdminEmail     string        // Admin account used to create the match
	AdminPassword  string        // Admin password
	NumPlayers     int           // Number of players to register
	BallsPerPlayer int           // Number of balls submitted per player
	Workers        int           // Number of concurrent submission workers
	Timeout        time.Duration // HTTP request timeout
	Verbose        bool          // Enable verbose logging
}

// ball mirrors the POST /api/matches/{id}/balls body.
type ball struct {
	EventID    string  `json:"eventId"`
	PlayerID   int     `json:"playerId"`
	Over       int     `json:"over"`
	Ball       int     `json:"ball"`
	Runs       int     `json:"runs"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	Balls      int     `json:"balls"`
	Extras     int     `json:"extras"`
	IsOut      bool    `json:"isOut"`
	WicketType *string `json:"wicketType"`
	BallType   string  `json:"ballType"`
	Commentary string  `json:"commentary"`
}

// submission pairs a ball with the registered player who bowls it in.
type submission struct {
	player *player
	ball   ball
}

// ackResponse mirrors the ball ingestion acknowledgement.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// rankingsResponse mirrors GET /api/rankings.
type rankingsResponse struct {
	Rankings []rankingEntry `json:"rankings"`
}

type rankingEntry struct {
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Stats struct {
		Runs          int `json:"runs"`
		DotBalls      int `json:"dotBalls"`
		WicketsTaken  int `json:"wicketsTaken"`
		TotalEarnings int `json:"totalEarnings"`
	} `json:"stats"`
}

// Stats holds smoke test statistics.
type Stats struct {
	PlayersRegistered int
	BallsGenerated    int
	BallsSubmitted    int
	BallsSuccessful   int
	BallsDuplicate    int
	BallsFailed       int
	RankedPlayers     int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
