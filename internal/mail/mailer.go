package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/polysign/mirsinn/internal/config"
	"github.com/polysign/mirsinn/internal/ports"
)

// Mailer delivers operator digests through an HTTP mail API.
type Mailer struct {
	endpoint string
	apiKey   string
	from     string
	to       string
	client   *http.Client
}

var _ ports.EmailSender = (*Mailer)(nil)

// NewMailer wires endpoint and sender/recipient addresses.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		to:       cfg.To,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendDigest posts a plain-text digest message.
func (m *Mailer) SendDigest(ctx context.Context, subject, body string) error {
	if m.endpoint == "" || m.to == "" {
		return fmt.Errorf("mailer misconfigured")
	}

	payload, err := json.Marshal(map[string]string{
		"from":    m.from,
		"to":      m.to,
		"subject": subject,
		"text":    body,
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail error: %s", resp.Status)
	}

	return nil
}
