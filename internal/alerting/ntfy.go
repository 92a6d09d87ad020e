package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/hostmond/hostmond/internal/config"
)

// ntfy speaks min/low/default/high/urgent.
var ntfyPriority = map[Priority]string{
	PriorityNormal:   "default",
	PriorityWarning:  "high",
	PriorityCritical: "urgent",
}

var ntfyTags = map[Priority][]string{
	PriorityWarning:  {"warning"},
	PriorityCritical: {"rotating_light", "warning"},
}

type NtfyChannel struct {
	cfg    config.NtfyConfig
	client *retryablehttp.Client
}

func NewNtfyChannel(cfg config.NtfyConfig) *NtfyChannel {
	return &NtfyChannel{cfg: cfg, client: newHTTPClient(10 * time.Second)}
}

func (c *NtfyChannel) Name() string  { return "ntfy" }
func (c *NtfyChannel) Enabled() bool { return c.cfg.Enabled }

func (c *NtfyChannel) Send(ctx context.Context, msg Message) error {
	url := strings.TrimSuffix(c.cfg.Server, "/") + "/" + c.cfg.Topic

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", url, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Title", msg.Title)
	req.Header.Set("Priority", ntfyPriority[msg.Priority])
	if tags := ntfyTags[msg.Priority]; len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
