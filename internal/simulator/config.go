package simulator

import "time"

// Config holds configuration for the arena traffic simulation
type Config struct {
	BaseURL      string        // Base URL of the service
	NumUsers     int           // Number of simulated users
	TopN         int           // Number of top entries to fetch
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between queue polls
	MaxPolls     int           // Polls per user before giving up
	LogFile      string        // Log file for simulation output
	Verbose      bool          // Enable verbose logging
}

// Persona is one simulated user's traffic profile
type Persona struct {
	UserID     string  `json:"userId"`
	Score      float64 `json:"score"`
	Mode       string  `json:"mode"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
	AllianceID string  `json:"allianceId"`
}

// MatchSide mirrors one side of a match record
type MatchSide struct {
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
	Ghost       bool    `json:"ghost"`
}

// Match mirrors the resolved match payload
type Match struct {
	BattleID   string    `json:"battleId"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Challenger MatchSide `json:"challenger"`
	Opponent   MatchSide `json:"opponent"`
	Winner     string    `json:"winner"`
}

// QueueResponse mirrors join and poll results
type QueueResponse struct {
	Status      string `json:"status"`
	WaitSeconds int    `json:"waitSeconds"`
	Match       *Match `json:"match"`
}

// Row mirrors a leaderboard row
type Row struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Points      int64  `json:"points"`
	DisplayName string `json:"displayName"`
	Tier        string `json:"tier"`
}

// Board mirrors the weekly leaderboard payload
type Board struct {
	WeekKey string `json:"weekKey"`
	Rows    []Row  `json:"rows"`
}

// Standing mirrors one alliance standing
type Standing struct {
	AllianceID string  `json:"allianceId"`
	Points     float64 `json:"points"`
	Wins       int     `json:"wins"`
	Members    int64   `json:"members"`
}

// StandingsResponse mirrors the war standings payload
type StandingsResponse struct {
	WarID     int64      `json:"warId"`
	Standings []Standing `json:"standings"`
}

// Stats holds simulation statistics
type Stats struct {
	UsersGenerated    int
	JoinsSubmitted    int
	JoinsFailed       int
	MatchesLive       int
	MatchesGhost      int
	MatchesImmediate  int
	QueueExpired      int
	WarContributions  int
	WarFailed         int
	LeaderboardRows   int
	StandingsReported int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
