package net

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/mchmarny/trackreward/pkg/telemetry"
)

const (
	PathReward     = "/v1/reward"
	PathExplain    = "/v1/reward/explain"
	PathThresholds = "/v1/thresholds"
	PathRuns       = "/v1/runs"
	PathHealth     = "/healthz"
)

// RewardResponse is the body returned by the reward endpoint.
type RewardResponse struct {
	Reward float64 `json:"reward"`
}

// ErrorResponse is the body returned on any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Client scores snapshots against a running reward server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("server URL required")
	}
	if hc == nil {
		hc = GetHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}, nil
}

// Evaluate returns the reward the server computes for s.
func (c *Client) Evaluate(ctx context.Context, s *reward.Snapshot) (float64, error) {
	var r RewardResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+PathReward, telemetry.FromSnapshot(s), &r); err != nil {
		return 0, err
	}
	return r.Reward, nil
}

// Explain returns the server's evaluation breakdown for s.
func (c *Client) Explain(ctx context.Context, s *reward.Snapshot) (*reward.Breakdown, error) {
	var b reward.Breakdown
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+PathExplain, telemetry.FromSnapshot(s), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Thresholds returns the thresholds the server evaluates with.
func (c *Client) Thresholds(ctx context.Context) (*reward.Thresholds, error) {
	var t reward.Thresholds
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+PathThresholds, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+PathHealth, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
