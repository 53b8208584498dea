package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/polysign/mirsinn/internal/config"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/ports"
)

// InstagramPublisher cross-posts the prepared caption through a Graph-style
// API. Media composition happens elsewhere; this sink only delivers payloads.
type InstagramPublisher struct {
	endpoint    string
	accessToken string
	client      *http.Client
}

var _ ports.SocialPublisher = (*InstagramPublisher)(nil)

// NewInstagramPublisher wires endpoint and token.
func NewInstagramPublisher(cfg config.SocialConfig) *InstagramPublisher {
	return &InstagramPublisher{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Publish posts the caption payload.
func (p *InstagramPublisher) Publish(ctx context.Context, post domain.SocialPost) error {
	if p.accessToken == "" || p.endpoint == "" {
		return fmt.Errorf("social publisher misconfigured")
	}

	body, err := json.Marshal(map[string]string{
		"caption":      post.Caption,
		"access_token": p.accessToken,
	})
	if err != nil {
		return fmt.Errorf("marshal post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/media", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("publish error: %s", resp.Status)
	}

	return nil
}
