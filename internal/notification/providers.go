package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPProvider posts rendered messages to the platform's notification channel
// endpoints. Both channels are fire-and-forget from this core's perspective.
type HTTPProvider struct {
	emailURL string
	smsURL   string
	client   *http.Client
}

func NewHTTPProvider(emailURL, smsURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		emailURL: emailURL,
		smsURL:   smsURL,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) SendEmail(ctx context.Context, to, subject, body string) error {
	return p.post(ctx, p.emailURL, map[string]string{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
}

func (p *HTTPProvider) SendSMS(ctx context.Context, to, body string) error {
	return p.post(ctx, p.smsURL, map[string]string{
		"to":   to,
		"body": body,
	})
}

func (p *HTTPProvider) post(ctx context.Context, url string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification payload serialization: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification provider status %d", resp.StatusCode)
	}
	return nil
}
