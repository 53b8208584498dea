package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/polysign/mirsinn/internal/config"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/ports"
)

// FCMSender posts prepared notifications to an FCM-style legacy endpoint,
// addressed to a device topic.
type FCMSender struct {
	endpoint  string
	serverKey string
	topic     string
	client    *http.Client
}

var _ ports.PushSender = (*FCMSender)(nil)

// NewFCMSender registers the endpoint, server key, and topic.
func NewFCMSender(cfg config.PushConfig) *FCMSender {
	return &FCMSender{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		topic:     cfg.Topic,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one notification message to the configured topic.
func (s *FCMSender) Send(ctx context.Context, msg domain.PushMessage) error {
	if s.serverKey == "" || s.endpoint == "" || s.client == nil {
		return fmt.Errorf("push sender misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"to": "/topics/" + s.topic,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"data": msg.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "key="+s.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return nil
}
