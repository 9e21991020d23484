package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// sessionResult tallies what one simulated user experienced.
type sessionResult struct {
	joined        bool
	matchKind     string // "live", "ghost", "" when unresolved
	immediate     bool
	expired       bool
	warContribute bool
	warFailed     bool
}

// runSessions drives every persona through a full arena session using a
// worker pool.
func runSessions(ctx context.Context, config *Config, personas []Persona, stats *Stats) {
	log.Printf("🎮 Running %d user sessions with %d workers...", len(personas), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		completed int64
		joins     int64
		joinFails int64
		live      int64
		ghost     int64
		immediate int64
		expired   int64
		contribs  int64
		warFails  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	personaChan := make(chan Persona, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for persona := range personaChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := runSingleSession(ctx, client, config, persona)

					atomic.AddInt64(&completed, 1)
					if result.joined {
						atomic.AddInt64(&joins, 1)
					} else {
						atomic.AddInt64(&joinFails, 1)
					}
					switch result.matchKind {
					case "live":
						atomic.AddInt64(&live, 1)
					case "ghost":
						atomic.AddInt64(&ghost, 1)
					}
					if result.immediate {
						atomic.AddInt64(&immediate, 1)
					}
					if result.expired {
						atomic.AddInt64(&expired, 1)
					}
					if result.warContribute {
						atomic.AddInt64(&contribs, 1)
					}
					if result.warFailed {
						atomic.AddInt64(&warFails, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						done := atomic.LoadInt64(&completed)
						l := atomic.LoadInt64(&live)
						g := atomic.LoadInt64(&ghost)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d sessions (live: %d, ghost: %d, expired: %d)",
								done, len(personas), l, g, atomic.LoadInt64(&expired))
						} else {
							fmt.Printf("\r🎮 Sessions: %d/%d (live: %d, ghost: %d)",
								done, len(personas), l, g)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(personaChan)
		for _, persona := range personas {
			select {
			case <-ctx.Done():
				return
			case personaChan <- persona:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	stats.JoinsSubmitted = int(atomic.LoadInt64(&joins))
	stats.JoinsFailed = int(atomic.LoadInt64(&joinFails))
	stats.MatchesLive = int(atomic.LoadInt64(&live))
	stats.MatchesGhost = int(atomic.LoadInt64(&ghost))
	stats.MatchesImmediate = int(atomic.LoadInt64(&immediate))
	stats.QueueExpired = int(atomic.LoadInt64(&expired))
	stats.WarContributions = int(atomic.LoadInt64(&contribs))
	stats.WarFailed = int(atomic.LoadInt64(&warFails))

	log.Printf(`✅ Session run completed:
   Joined: %d
   Live matches: %d
   Ghost matches: %d
   Expired: %d
   War contributions: %d
`, stats.JoinsSubmitted, stats.MatchesLive, stats.MatchesGhost, stats.QueueExpired, stats.WarContributions)
}

// runSingleSession walks one persona through queue join, polling, and a
// war contribution.
func runSingleSession(ctx context.Context, client *HTTPClient, config *Config, persona Persona) sessionResult {
	var result sessionResult

	join, err := joinQueue(ctx, client, config.BaseURL, persona)
	if err != nil {
		return result
	}
	result.joined = true

	switch join.Status {
	case "matched":
		result.immediate = true
		result.matchKind = matchKind(join.Match)
	case "queued":
		result.matchKind, result.expired = pollUntilResolved(ctx, client, config, persona.UserID)
	}

	if err := fightForAlliance(ctx, client, config.BaseURL, persona); err != nil {
		result.warFailed = true
	} else {
		result.warContribute = true
	}

	return result
}

// joinQueue submits the queue join for one persona.
func joinQueue(ctx context.Context, client *HTTPClient, baseURL string, persona Persona) (QueueResponse, error) {
	body := map[string]interface{}{
		"userId": persona.UserID,
		"score":  persona.Score,
		"mode":   persona.Mode,
	}
	if persona.Thumbnail != "" {
		body["thumbnail"] = persona.Thumbnail
	}

	resp, err := client.Post(ctx, baseURL+"/arena/queue/join", body)
	if err != nil {
		return QueueResponse{}, fmt.Errorf("join request failed: %w", err)
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return QueueResponse{}, fmt.Errorf("failed to read join response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return QueueResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}

	var join QueueResponse
	if err := json.Unmarshal(data, &join); err != nil {
		return QueueResponse{}, fmt.Errorf("failed to parse join response: %w", err)
	}
	return join, nil
}

// pollUntilResolved polls the queue until the entry is matched or expires.
func pollUntilResolved(ctx context.Context, client *HTTPClient, config *Config, userID string) (kind string, expired bool) {
	target := config.BaseURL + "/arena/queue/poll?userId=" + url.QueryEscape(userID)

	for i := 0; i < config.MaxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(config.PollInterval):
		}

		resp, err := client.Get(ctx, target)
		if err != nil {
			continue
		}
		data, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			continue
		}

		var poll QueueResponse
		if err := json.Unmarshal(data, &poll); err != nil {
			continue
		}

		switch poll.Status {
		case "matched":
			return matchKind(poll.Match), false
		case "expired":
			return "", true
		}
	}
	return "", false
}

// fightForAlliance joins the persona's alliance and submits one scan.
func fightForAlliance(ctx context.Context, client *HTTPClient, baseURL string, persona Persona) error {
	joinBody := map[string]interface{}{
		"userId":     persona.UserID,
		"allianceId": persona.AllianceID,
	}
	resp, err := client.Post(ctx, baseURL+"/war/join", joinBody)
	if err != nil {
		return fmt.Errorf("war join failed: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read war join response: %w", err)
	}
	// 409 means the user already belongs to an alliance; the session
	// still contributes to wherever they landed.
	if resp.StatusCode != StatusOK && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("war join HTTP %d", resp.StatusCode)
	}

	contributeBody := map[string]interface{}{
		"userId":     persona.UserID,
		"allianceId": persona.AllianceID,
		"score":      persona.Score,
		"mode":       persona.Mode,
	}
	resp, err = client.Post(ctx, baseURL+"/war/contribute", contributeBody)
	if err != nil {
		return fmt.Errorf("war contribute failed: %w", err)
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read contribute response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("war contribute HTTP %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

// matchKind classifies a resolved match by its opponent.
func matchKind(m *Match) string {
	if m == nil {
		return ""
	}
	if m.Opponent.Ghost || m.Challenger.Ghost {
		return "ghost"
	}
	return "live"
}
