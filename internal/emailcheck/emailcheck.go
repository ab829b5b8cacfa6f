package emailcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/globalmarket/backend/internal/config"
)

// Client asks an external verifier whether a mailbox actually accepts mail.
// A non-"passed" status means the address should not be allowed to register.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.EMAIL_CHECK_URL,
		apiKey:     cfg.EMAIL_CHECK_KEY,
	}
}

func (c *Client) Check(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("email", email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("emailcheck: request build failed: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("emailcheck: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("emailcheck: verifier answered %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("emailcheck: decode failed: %w", err)
	}
	return body.Status == "passed", nil
}

// AllowAll skips the external call. Used when no verifier is configured
// and in tests.
type AllowAll struct{}

func (AllowAll) Check(ctx context.Context, email string) (bool, error) {
	return true, nil
}
