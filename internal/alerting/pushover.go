package alerting

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/hostmond/hostmond/internal/config"
)

// Pushover native priorities run -2 (lowest) to 2 (emergency).
var pushoverPriority = map[Priority]int{
	PriorityNormal:   0,
	PriorityWarning:  1,
	PriorityCritical: 2,
}

type PushoverChannel struct {
	cfg    config.PushoverConfig
	client *retryablehttp.Client
}

func NewPushoverChannel(cfg config.PushoverConfig) *PushoverChannel {
	return &PushoverChannel{cfg: cfg, client: newHTTPClient(10 * time.Second)}
}

func (c *PushoverChannel) Name() string  { return "pushover" }
func (c *PushoverChannel) Enabled() bool { return c.cfg.Enabled }

func (c *PushoverChannel) Send(ctx context.Context, msg Message) error {
	form := url.Values{
		"token":    {c.cfg.APIToken},
		"user":     {c.cfg.UserKey},
		"title":    {msg.Title},
		"message":  {msg.Body},
		"priority": {strconv.Itoa(pushoverPriority[msg.Priority])},
	}
	// Emergency priority requires retry/expire parameters.
	if pushoverPriority[msg.Priority] == 2 {
		form.Set("retry", "60")
		form.Set("expire", "3600")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}
	return nil
}
