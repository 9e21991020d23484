// Package model contains domain records passed between layers and persisted
// in the key-value store.
package model

import "time"

// Queue entry statuses.
const (
	StatusQueued  = "queued"
	StatusMatched = "matched"
)

// Poll result statuses returned to clients.
const (
	PollMatched = "matched"
	PollWaiting = "waiting"
	PollExpired = "expired"
)

// Match record statuses.
const (
	MatchPending  = "pending"
	MatchResolved = "resolved"
)

// WinnerTie marks a resolved match with equal scores.
const WinnerTie = "tie"

// QueueEntry represents a user waiting in a mode queue.
// A user appears in at most one mode queue at a time.
type QueueEntry struct {
	UserID    string    `json:"userId"`
	Score     float64   `json:"score"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Mode      string    `json:"mode"`
	JoinedAt  time.Time `json:"joinedAt"`
	Status    string    `json:"status"`
	BattleID  string    `json:"battleId,omitempty"`
}

// GhostEntry is a frozen snapshot of a past submission usable as a
// stand-in opponent. Synthetic entries are generated, not replayed.
type GhostEntry struct {
	Hash        string    `json:"hash"`
	UserID      string    `json:"userId,omitempty"`
	Score       float64   `json:"score"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Mode        string    `json:"mode"`
	DisplayName string    `json:"displayName"`
	AddedAt     time.Time `json:"addedAt"`
	Synthetic   bool      `json:"synthetic,omitempty"`
}

// Snapshot is an outfit submission flowing through the ingest pipeline
// into the ghost pool.
type Snapshot struct {
	UserID    string
	Score     float64
	Thumbnail string
	Mode      string
	TakenAt   time.Time
}

// MatchSide holds one participant of a match.
type MatchSide struct {
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName,omitempty"`
	Score       float64 `json:"score"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Ghost       bool    `json:"ghost,omitempty"`
}

// MatchRecord is the stored battle state. Winner holds the winning side's
// user id, or WinnerTie on equal scores, once resolved.
type MatchRecord struct {
	BattleID   string    `json:"battleId"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Challenger MatchSide `json:"challenger"`
	Opponent   MatchSide `json:"opponent"`
	Winner     string    `json:"winner,omitempty"`
	Verdict    string    `json:"verdict,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// LeaderboardRow is one ranked row of the weekly leaderboard.
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Points      int64  `json:"points"`
	DisplayName string `json:"displayName"`
	Tier        string `json:"tier"`
	You         bool   `json:"you,omitempty"`
}

// Standing is a user's position after a score increment.
type Standing struct {
	UserID string `json:"userId"`
	Points int64  `json:"points"`
	Rank   int    `json:"rank"`
}

// Profile holds display-name data independent of leaderboard state.
type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Membership binds a user to an alliance for one war.
type Membership struct {
	UserID     string    `json:"userId"`
	AllianceID string    `json:"allianceId"`
	WarID      int64     `json:"warId"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// DailyContribution tracks a user's scan count and accumulated weighted
// points for one day of a war.
type DailyContribution struct {
	Scans  int64   `json:"scans"`
	Points float64 `json:"points"`
}

// AllianceBattle is one pairing of the daily battle schedule with its
// accumulated scores. Winner stays empty until the day is finalized;
// WinnerTie marks an even day.
type AllianceBattle struct {
	Home      string  `json:"home"`
	Away      string  `json:"away"`
	HomeScore float64 `json:"homeScore"`
	AwayScore float64 `json:"awayScore"`
	Winner    string  `json:"winner,omitempty"`
}

// DayResults is the immutable record of a finalized war day.
type DayResults struct {
	Date        string           `json:"date"`
	WarID       int64            `json:"warId"`
	Battles     []AllianceBattle `json:"battles"`
	FinalizedAt time.Time        `json:"finalizedAt"`
}

// AllianceStanding is one alliance's season aggregate.
type AllianceStanding struct {
	AllianceID string  `json:"allianceId"`
	Points     float64 `json:"points"`
	Wins       int     `json:"wins"`
	Members    int64   `json:"members"`
}

// QueueStats is the cached social-proof summary of the arena.
type QueueStats struct {
	Online               int            `json:"online"`
	MatchesToday         int64          `json:"matchesToday"`
	EstimatedWaitSeconds int            `json:"estimatedWaitSeconds"`
	QueueDepth           map[string]int `json:"queueDepth"`
}
