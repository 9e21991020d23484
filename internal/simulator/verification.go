package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// getLeaderboard retrieves the top N weekly leaderboard rows.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) (Board, error) {
	log.Printf("🥇 Getting top %d leaderboard rows...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/arena/leaderboard?limit=" + strconv.Itoa(config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Board{}, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return Board{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return Board{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var board Board
	if err := json.Unmarshal(body, &board); err != nil {
		return Board{}, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardRows = len(board.Rows)
	log.Printf("✅ Retrieved %d leaderboard rows for week %s", len(board.Rows), board.WeekKey)
	return board, nil
}

// getStandings retrieves the current war standings.
func getStandings(ctx context.Context, config *Config, stats *Stats) (StandingsResponse, error) {
	log.Println("⚔️  Getting war standings...")

	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/war/standings")
	if err != nil {
		return StandingsResponse{}, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return StandingsResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return StandingsResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var standings StandingsResponse
	if err := json.Unmarshal(body, &standings); err != nil {
		return StandingsResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.StandingsReported = len(standings.Standings)
	log.Printf("✅ Retrieved standings for war %d (%d alliances)", standings.WarID, len(standings.Standings))
	return standings, nil
}

// verifyResults checks the leaderboard and standings for consistency.
func verifyResults(ctx context.Context, config *Config, board Board, standings StandingsResponse, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if err := verifyLeaderboardOrder(board); err != nil {
		log.Printf("⚠️  Leaderboard consistency warning: %v", err)
	} else {
		log.Println("✅ Leaderboard consistency verified")
	}

	if err := verifyStandings(standings); err != nil {
		log.Printf("⚠️  Standings consistency warning: %v", err)
	} else {
		log.Println("✅ Standings consistency verified")
	}

	displayTopRows(board, standings, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyLeaderboardOrder checks rank continuity and point ordering.
func verifyLeaderboardOrder(board Board) error {
	if len(board.Rows) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	for i, row := range board.Rows {
		if row.Rank != i+1 {
			return fmt.Errorf("row %d carries rank %d", i, row.Rank)
		}
		if i > 0 && row.Points > board.Rows[i-1].Points {
			return fmt.Errorf("leaderboard not properly sorted: row %d has more points than row %d", i, i-1)
		}
		if row.DisplayName == "" {
			return fmt.Errorf("row %d has no display name", i)
		}
	}
	return nil
}

// verifyStandings checks that all six alliances report and are sorted.
func verifyStandings(standings StandingsResponse) error {
	const allianceCount = 6

	if len(standings.Standings) != allianceCount {
		return fmt.Errorf("expected %d alliances, got %d", allianceCount, len(standings.Standings))
	}

	for i := 1; i < len(standings.Standings); i++ {
		if standings.Standings[i].Points > standings.Standings[i-1].Points {
			return fmt.Errorf("standings not properly sorted: entry %d outranks entry %d", i, i-1)
		}
	}
	return nil
}

// displayTopRows shows the top of the leaderboard and the standings.
func displayTopRows(board Board, standings StandingsResponse, verbose bool) {
	topN := 10
	if len(board.Rows) < topN {
		topN = len(board.Rows)
	}

	log.Printf("🏆 Top %d of week %s:", topN, board.WeekKey)
	for i := 0; i < topN; i++ {
		row := board.Rows[i]
		log.Printf("   %d. %s (%s) - %d pts", row.Rank, row.DisplayName, row.Tier, row.Points)
	}

	log.Printf("⚔️  War %d standings:", standings.WarID)
	for i, s := range standings.Standings {
		log.Printf("   %d. %s - %.1f pts (%d members, %d wins)", i+1, s.AllianceID, s.Points, s.Members, s.Wins)
	}

	if verbose && len(board.Rows) > 0 {
		var sum int64
		for _, row := range board.Rows {
			sum += row.Points
		}
		log.Printf(`📊 Leaderboard statistics:
   Rows: %d
   Total points: %d
   Average points: %.1f
`, len(board.Rows), sum, float64(sum)/float64(len(board.Rows)))
	}
}
