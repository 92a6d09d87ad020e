package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/hostmond/hostmond/internal/config"
)

// webhookPayload is what operators receive on their endpoint.
type webhookPayload struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
}

type WebhookChannel struct {
	cfg    config.WebhookConfig
	client *retryablehttp.Client
}

func NewWebhookChannel(cfg config.WebhookConfig) *WebhookChannel {
	return &WebhookChannel{cfg: cfg, client: newHTTPClient(10 * time.Second)}
}

func (c *WebhookChannel) Name() string  { return "webhook" }
func (c *WebhookChannel) Enabled() bool { return c.cfg.Enabled }

func (c *WebhookChannel) Send(ctx context.Context, msg Message) error {
	payload := webhookPayload{
		EventType: msg.EventType,
		Timestamp: time.Now().Format(time.RFC3339),
		Title:     msg.Title,
		Message:   msg.Body,
		Priority:  string(msg.Priority),
	}

	var req *retryablehttp.Request
	var err error
	if strings.EqualFold(c.cfg.Method, "GET") {
		q := url.Values{
			"event_type": {payload.EventType},
			"title":      {payload.Title},
			"message":    {payload.Message},
			"priority":   {payload.Priority},
		}
		req, err = retryablehttp.NewRequestWithContext(ctx, "GET", c.cfg.URL+"?"+q.Encode(), nil)
	} else {
		var body []byte
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		req, err = retryablehttp.NewRequestWithContext(ctx, "POST", c.cfg.URL, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
