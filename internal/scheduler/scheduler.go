// Package scheduler drives the monitoring cycle: sample the host,
// diff against the previous cycle, publish to websocket subscribers
// and fan qualifying changes out as alerts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hostmond/hostmond/internal/alerting"
	"github.com/hostmond/hostmond/internal/detector"
	"github.com/hostmond/hostmond/internal/events"
	"github.com/hostmond/hostmond/internal/probe"
	"github.com/hostmond/hostmond/internal/state"
)

// Broadcaster is the subscriber-facing side of the hub.
type Broadcaster interface {
	BroadcastTick(snap *state.SystemSnapshot, evts []events.Event)
	BroadcastEvent(e events.Event)
}

// Alerter is the outbound notification side of the pipeline.
type Alerter interface {
	Dispatch(ctx context.Context, msg alerting.Message) map[string]bool
}

// Scheduler owns the periodic tick. The whole cycle runs synchronously:
// subscribers always see snapshot and events from the same sample, and
// a tick's events are fully alerted before the next sample is taken.
// The dispatcher fans channels out concurrently with per-channel
// timeouts, so one hanging endpoint delays a tick by at most that
// timeout. An overlong tick drops ticker beats instead of overlapping.
type Scheduler struct {
	source   probe.Source
	detector *detector.Detector
	hub      Broadcaster
	alerts   Alerter
	store    *state.Store
	interval time.Duration
	logger   *slog.Logger

	running bool
	runMu   sync.Mutex
}

func New(
	source probe.Source,
	det *detector.Detector,
	hub Broadcaster,
	alerts Alerter,
	store *state.Store,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		source:   source,
		detector: det,
		hub:      hub,
		alerts:   alerts,
		store:    store,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Run starts the monitoring loop and blocks until the context is
// cancelled. The first sample happens immediately rather than waiting
// out a full tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.runMu.Unlock()

	s.logger.Info("starting monitoring loop", "tick_interval", s.interval)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitoring loop cancelled, shutting down")
			s.shutdown()
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

func (s *Scheduler) tick(ctx context.Context) {
	snap := s.source.Acquire(ctx)
	s.store.Set(snap)

	evts := s.detector.Detect(snap)
	s.hub.BroadcastTick(snap, evts)

	for _, e := range evts {
		s.logger.Info("change detected", "type", e.Type())
		s.dispatchAlert(ctx, e)
	}
}

func (s *Scheduler) dispatchAlert(ctx context.Context, e events.Event) {
	msg, ok := alerting.Render(e)
	if !ok {
		return
	}

	results := s.alerts.Dispatch(ctx, msg)
	for channel, delivered := range results {
		if !delivered {
			s.logger.Warn("alert delivery failed", "channel", channel, "event", msg.EventType)
		}
	}
}

// HotplugSource is the device notification stream, normally the udev
// watcher.
type HotplugSource interface {
	Run(ctx context.Context) error
	Events() <-chan events.HardwareHotplug
}

// RunHotplug pumps udev notifications to subscribers until the context
// is cancelled. A watcher start failure is returned to the caller; the
// tick loop is unaffected.
func (s *Scheduler) RunHotplug(ctx context.Context, watcher HotplugSource) error {
	errCh := make(chan error, 1)
	go func() { errCh <- watcher.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case ev := <-watcher.Events():
			s.logger.Info("hotplug event", "action", ev.Action, "device", ev.Device)
			s.hub.BroadcastEvent(ev)
		}
	}
}

func (s *Scheduler) shutdown() {
	s.runMu.Lock()
	s.running = false
	s.runMu.Unlock()

	s.logger.Info("monitoring loop shutdown complete")
}
