package alerting

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hostmond/hostmond/internal/config"
)

// Dispatcher decides whether an event type alerts at all and, if so,
// attempts every enabled channel independently. It deliberately makes
// no idempotence promise: dispatching the same event twice sends twice.
type Dispatcher struct {
	channels    []Channel
	enabled     map[string]bool
	sendTimeout time.Duration
	logger      *slog.Logger
}

func NewDispatcher(chans []Channel, enabled map[string]bool, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		channels:    chans,
		enabled:     enabled,
		sendTimeout: 15 * time.Second,
		logger:      logger.With("component", "alerting"),
	}
}

// NewDispatcherFromConfig wires the four stock channels.
func NewDispatcherFromConfig(cfg config.AlertsConfig, logger *slog.Logger) *Dispatcher {
	chans := []Channel{
		NewEmailChannel(cfg.Email),
		NewPushoverChannel(cfg.Pushover),
		NewNtfyChannel(cfg.Ntfy),
		NewWebhookChannel(cfg.Webhook),
	}
	return NewDispatcher(chans, cfg.Events, logger)
}

// ShouldAlert reports whether the event type is marked for alerting.
func (d *Dispatcher) ShouldAlert(eventType string) bool {
	return d.enabled[eventType]
}

// Dispatch fans one alert out to every enabled channel concurrently and
// returns a per-channel success map. A suppressed event type short
// circuits before any channel work, returning an empty map.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) map[string]bool {
	if !d.ShouldAlert(msg.EventType) {
		return map[string]bool{}
	}

	results := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		if !ch.Enabled() {
			continue
		}
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			err := ch.Send(sendCtx, msg)
			if err != nil {
				d.logger.Warn("alert delivery failed",
					"channel", ch.Name(),
					"event_type", msg.EventType,
					"error", err,
				)
			} else {
				d.logger.Debug("alert delivered",
					"channel", ch.Name(),
					"event_type", msg.EventType,
				)
			}

			mu.Lock()
			results[ch.Name()] = err == nil
			mu.Unlock()
		}(ch)
	}

	wg.Wait()
	return results
}
