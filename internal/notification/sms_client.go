package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// SMSSender posts a message to an HTTP SMS gateway. Configured from
// SMS_API_URL / SMS_API_KEY / SMS_FROM; a blank URL disables the channel.
type SMSSender interface {
	Send(ctx context.Context, to, text string) error
}

type httpSMSClient struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTPSMSClientFromEnv() SMSSender {
	return &httpSMSClient{
		apiURL: os.Getenv("SMS_API_URL"),
		apiKey: os.Getenv("SMS_API_KEY"),
		from:   os.Getenv("SMS_FROM"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpSMSClient) Send(ctx context.Context, to, text string) error {
	if c.apiURL == "" {
		return fmt.Errorf("sms gateway not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"from": c.from,
		"to":   to,
		"text": text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
