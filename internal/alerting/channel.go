// Package alerting fans detected events out to the configured
// notification channels: email, two push services, and a generic
// webhook. Channels are independent; one channel failing never blocks
// or fails the others.
package alerting

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Priority is the channel-independent urgency of an alert. Each channel
// translates it to its own native scale.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityWarning  Priority = "warning"
	PriorityCritical Priority = "critical"
)

// Message is one alert to deliver. EventType is the alert-config key,
// not the wire event type; the template table owns that mapping.
type Message struct {
	EventType string
	Title     string
	Body      string
	Priority  Priority
}

// Channel is a single notification transport. Implementations are
// stateless across calls and safe for concurrent use.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, msg Message) error
}

// newHTTPClient builds the retrying HTTP client shared by the push and
// webhook channels. HTTP-level errors are not retried; an alert is
// best-effort and a 4xx will not get better.
func newHTTPClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return client
}
