package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lampadamagica/genio/backend/internal/config"
)

// failureTag marks answers that came from the error substitution path, so the
// sheet keeps a record of broken turns instead of silently dropping them.
const failureTag = "[ERRORE] "

// timestampLayout renders the Italian locale style the sheet expects.
const timestampLayout = "02/01/2006, 15:04:05"

// Entry is one logged interaction.
type Entry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Client posts interaction entries to the configured webhook, best effort.
// The webhook (typically an Apps Script behind a sheet) does not return a
// useful body, so the response is discarded.
type Client struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a webhook client, or nil when no endpoint is configured so
// callers can treat logging as disabled.
func NewClient(cfg config.JournalConfig) *Client {
	if !cfg.Enabled() {
		return nil
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

// Record posts one question/answer pair. Failed answers are tagged rather
// than skipped.
func (c *Client) Record(ctx context.Context, question, answer string, failed bool) error {
	if failed {
		answer = failureTag + answer
	}

	entry := Entry{
		Question:  question,
		Answer:    answer,
		Timestamp: c.now().Format(timestampLayout),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build journal request: %w", err)
	}
	// text/plain keeps the Apps Script endpoint from demanding a CORS preflight.
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post journal entry: %w", err)
	}
	defer resp.Body.Close()

	// Not read, only drained so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("journal endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
