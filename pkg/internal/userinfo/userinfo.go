// Package userinfo enriches an event actor id with a display name from an
// external identity provider (§6, USERDATA_*). It is never load-bearing:
// a failed or disabled lookup degrades to the bare actor id.
package userinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/foliva/docengine/pkg/configs"
)

// Client looks up a display name for a user id, breaking the circuit
// after repeated failures so a dead identity provider never slows down
// the hot read path (§9 — enrichment is best-effort, not authoritative).
type Client struct {
	cfg        configs.UserDataConfig
	cb         *gobreaker.CircuitBreaker
	httpClient *http.Client
}

func New(cfg configs.UserDataConfig) *Client {
	settings := gobreaker.Settings{
		Name:        "userinfo-lookup",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		cfg:        cfg,
		cb:         gobreaker.NewCircuitBreaker(settings),
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
	}
}

type lookupResponse struct {
	DisplayName string `json:"displayName"`
}

// DisplayName returns the resolved display name for id, or id itself if
// lookups are disabled, the breaker is open, or the request fails.
func (c *Client) DisplayName(ctx context.Context, id string) string {
	if !c.cfg.Enabled || c.cfg.BaseURL == "" {
		return id
	}

	name, err := c.cb.Execute(func() (any, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		return id
	}

	return name.(string)
}

func (c *Client) fetch(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/%s", c.cfg.BaseURL, id), nil)
	if err != nil {
		return "", err
	}

	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	if out.DisplayName == "" {
		return "", fmt.Errorf("userinfo: empty display name")
	}

	return out.DisplayName, nil
}
