package drawbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/circularity/internal/strokegen"
	"github.com/okian/circularity/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON (when not nil) and decodes a JSON reply into out
// (when not nil). It returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("HTTP %d %s %s: %s", resp.StatusCode, method, path, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

type createSessionRequest struct {
	Difficulty string  `json:"difficulty"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type strokeRequest struct {
	StrokeID  string            `json:"stroke_id"`
	Points    []strokegen.Point `json:"points"`
	ElapsedMs float64           `json:"elapsed_ms"`
}

type eventRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	T    float64 `json:"t"`
}

type eventResponse struct {
	Status  string   `json:"status"`
	Verdict *Verdict `json:"verdict"`
}

// counters aggregates per-stroke results across workers.
type counters struct {
	sessions  atomic.Int64
	submitted atomic.Int64
	scored    atomic.Int64
	missed    atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// playAll runs every player concurrently using a worker pool.
func playAll(ctx context.Context, config *Config, players []Player, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "playing sessions",
		logger.Int("players", len(players)),
		logger.Int("attempts", config.Attempts),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)
	var c counters

	indexCh := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if ctx.Err() != nil {
					return
				}
				if err := playOne(ctx, client, config, &players[idx], &c); err != nil {
					players[idx].Failed++
					c.failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "player failed",
							logger.String("player", players[idx].Name), logger.Error(err))
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexCh)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case indexCh <- i:
			}
		}
	}()

	wg.Wait()

	stats.SessionsCreated = int(c.sessions.Load())
	stats.StrokesSubmitted = int(c.submitted.Load())
	stats.StrokesScored = int(c.scored.Load())
	stats.StrokesMissed = int(c.missed.Load())
	stats.StrokesDuplicate = int(c.duplicate.Load())
	stats.PlayersFailed = int(c.failed.Load())

	log.Info(ctx, "sessions played",
		logger.Int("sessions", stats.SessionsCreated),
		logger.Int("scored", stats.StrokesScored),
		logger.Int("missed", stats.StrokesMissed),
		logger.Int("duplicate", stats.StrokesDuplicate),
		logger.Int("failed", stats.PlayersFailed))
	return ctx.Err()
}

// playOne creates a session for p and draws every attempt.
func playOne(ctx context.Context, client *HTTPClient, config *Config, p *Player, c *counters) error {
	var sess Session
	req := createSessionRequest{Difficulty: p.Difficulty, Width: config.Canvas.Width, Height: config.Canvas.Height}
	if _, err := client.do(ctx, http.MethodPost, "/sessions", req, &sess); err != nil {
		return err
	}
	p.SessionID = sess.ID
	c.sessions.Add(1)

	var last strokeRequest
	for n := 0; n < config.Attempts; n++ {
		stroke, elapsed := drawAttempt(*p, sess.Center, config.Canvas, n)

		var (
			v   Verdict
			err error
		)
		if p.UseEvents {
			v, err = drawWithEvents(ctx, client, sess.ID, stroke, elapsed)
		} else {
			last = strokeRequest{StrokeID: uuid.NewString(), Points: stroke, ElapsedMs: elapsed}
			_, err = client.do(ctx, http.MethodPost, "/sessions/"+sess.ID+"/strokes", last, &v)
		}
		c.submitted.Add(1)
		if err != nil {
			return err
		}
		record(p, v, c)
	}

	if config.ResubmitLast && last.StrokeID != "" {
		var v Verdict
		if _, err := client.do(ctx, http.MethodPost, "/sessions/"+sess.ID+"/strokes", last, &v); err != nil {
			return err
		}
		c.submitted.Add(1)
		if v.Status != statusDuplicate {
			return fmt.Errorf("stroke %s was rescored", last.StrokeID)
		}
		p.Duplicates++
		c.duplicate.Add(1)
	}
	return nil
}

// drawWithEvents replays stroke as a pointer gesture and returns the verdict
// carried by the release.
func drawWithEvents(ctx context.Context, client *HTTPClient, id string, stroke []strokegen.Point, elapsed float64) (Verdict, error) {
	path := "/sessions/" + id + "/events"
	samples := strokegen.Timed(stroke, 0, elapsed)
	for i, s := range samples {
		kind := "move"
		if i == 0 {
			kind = "down"
		}
		if _, err := client.do(ctx, http.MethodPost, path, eventRequest{Type: kind, X: s.X, Y: s.Y, T: s.T}, nil); err != nil {
			return Verdict{}, err
		}
	}

	var resp eventResponse
	if _, err := client.do(ctx, http.MethodPost, path, eventRequest{Type: "up", T: elapsed}, &resp); err != nil {
		return Verdict{}, err
	}
	if resp.Verdict == nil {
		return Verdict{}, fmt.Errorf("release on %s carried no verdict", id)
	}
	return *resp.Verdict, nil
}

func record(p *Player, v Verdict, c *counters) {
	switch v.Outcome {
	case outcomeNotEnclosed:
		p.Missed++
		c.missed.Add(1)
	default:
		p.Scored++
		c.scored.Add(1)
	}
	if v.Best > p.Best {
		p.Best = v.Best
	}
}

// deleteSessions closes every session the run created.
func deleteSessions(ctx context.Context, config *Config, players []Player) {
	client := newHTTPClient(config.BaseURL, config.Timeout)
	deleted := 0
	for _, p := range players {
		if p.SessionID == "" {
			continue
		}
		if _, err := client.do(ctx, http.MethodDelete, "/sessions/"+p.SessionID, nil, nil); err != nil {
			logger.Get().Warn(ctx, "failed to delete session",
				logger.String("sessionID", p.SessionID), logger.Error(err))
			continue
		}
		deleted++
	}
	logger.Get().Info(ctx, "sessions deleted", logger.Int("deleted", deleted))
}
