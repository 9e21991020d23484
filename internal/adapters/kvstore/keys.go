package kvstore

import "fmt"

// Key builders for the arena key schema. Every key the service touches is
// built here so the schema stays greppable in one place.

// QueueKey is the per-mode queue hash (userId -> QueueEntry JSON).
func QueueKey(mode string) string { return "arena:queue:" + mode }

// QueueUserKey is the membership index (userId -> mode). Its presence is
// what enforces at-most-one-queue-per-user.
func QueueUserKey(userID string) string { return "arena:queue:user:" + userID }

// OnlineKey is the online user counter.
func OnlineKey() string { return "arena:online" }

// MatchesKey is the completed-match counter for a YYYY-MM-DD date.
func MatchesKey(date string) string { return "arena:matches:" + date }

// BattleKey holds a MatchRecord JSON.
func BattleKey(battleID string) string { return "arena:battle:" + battleID }

// GhostsKey is the ghost pool hash (entry hash -> GhostEntry JSON).
func GhostsKey() string { return "arena:ghosts" }

// LeaderboardKey is the weekly points sorted set for an ISO week key.
func LeaderboardKey(weekKey string) string { return "arena:lb:" + weekKey }

// ProfileKey holds a Profile JSON.
func ProfileKey(userID string) string { return "arena:profile:" + userID }

// WarMemberKey binds a user to an alliance for one war (SetNX).
func WarMemberKey(warID int64, userID string) string {
	return fmt.Sprintf("war:%d:member:%s", warID, userID)
}

// WarSizeKey counts an alliance's members for one war.
func WarSizeKey(warID int64, allianceID string) string {
	return fmt.Sprintf("war:%d:size:%s", warID, allianceID)
}

// WarUserDayKey is the per-user daily contribution hash (scans, points).
func WarUserDayKey(warID int64, date, userID string) string {
	return fmt.Sprintf("war:%d:user:%s:%s", warID, date, userID)
}

// WarDayKey is the per-day alliance score sorted set.
func WarDayKey(warID int64, date string) string {
	return fmt.Sprintf("war:%d:day:%s", warID, date)
}

// WarTotalKey is the season total sorted set.
func WarTotalKey(warID int64) string { return fmt.Sprintf("war:%d:total", warID) }

// WarWinsKey is the daily-battle win counter sorted set.
func WarWinsKey(warID int64) string { return fmt.Sprintf("war:%d:wins", warID) }

// WarResultsKey holds the immutable finalized results of one war day.
func WarResultsKey(warID int64, date string) string {
	return fmt.Sprintf("war:%d:results:%s", warID, date)
}
