package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"sync/atomic"
	"time"

	"github.com/midwicket/pavilion/pkg/logger"
)

// player is one registered account with its session cookie jar.
type player struct {
	ID     int
	Name   string
	Email  string
	client *http.Client
}

// newSessionClient creates an HTTP client that carries session cookies.
func newSessionClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &http.Client{Timeout: timeout, Jar: jar}, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// submitBalls pushes the generated submissions through a worker pool, each
// ball authenticated as its player.
func submitBalls(ctx context.Context, config *Config, matchID string, subs []submission, stats *Stats) error {
	logger.Get().Info(ctx, "submitting balls",
		logger.Int("count", len(subs)),
		logger.Int("workers", config.Workers))

	url := config.BaseURL + "/api/matches/" + matchID + "/balls"

	var successful, duplicate, failed, submitted int64

	subChan := make(chan submission, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&submitted, 1)
				switch submitSingleBall(ctx, url, sub) {
				case resultSuccess:
					atomic.AddInt64(&successful, 1)
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.BallsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BallsSuccessful = int(atomic.LoadInt64(&successful))
	stats.BallsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.BallsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "ball submission completed",
		logger.Int("successful", stats.BallsSuccessful),
		logger.Int("duplicate", stats.BallsDuplicate),
		logger.Int("failed", stats.BallsFailed))

	if stats.BallsFailed > 0 {
		return fmt.Errorf("%d ball submissions failed", stats.BallsFailed)
	}
	return nil
}

// Submission result classes.
const (
	resultSuccess   = "success"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

func submitSingleBall(ctx context.Context, url string, sub submission) string {
	var ack ackResponse
	status, err := postJSON(ctx, sub.player.client, url, sub.ball, &ack)
	if err != nil {
		return resultFailed
	}
	switch status {
	case http.StatusCreated:
		return resultSuccess
	case http.StatusOK:
		if ack.Duplicate {
			return resultDuplicate
		}
		return resultSuccess
	default:
		return resultFailed
	}
}
