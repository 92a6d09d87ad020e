// Package hotplug streams block-device add and remove notifications
// from udev, independent of the sampling tick.
package hotplug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/events"
)

// Watcher runs udevadm monitor as a subprocess and converts its
// property blocks into hotplug events. A failure to start udev
// monitoring is reported to the caller and leaves the rest of the
// daemon untouched.
type Watcher struct {
	logger *slog.Logger
	events chan events.HardwareHotplug
}

func NewWatcher(logger *slog.Logger) *Watcher {
	return &Watcher{
		logger: logger.With("component", "hotplug"),
		events: make(chan events.HardwareHotplug, 16),
	}
}

// Events is the stream of detected hotplug notifications.
func (w *Watcher) Events() <-chan events.HardwareHotplug {
	return w.events
}

// Run blocks until the context is cancelled or the udev monitor exits.
func (w *Watcher) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "udevadm", "monitor", "--udev", "--property", "--subsystem-match=block")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("udevadm stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start udevadm monitor: %w", err)
	}

	w.logger.Info("hotplug monitoring started")

	err = w.consume(ctx, stdout)
	cmd.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("udevadm monitor stream: %w", err)
	}
	return fmt.Errorf("udevadm monitor exited")
}

// consume parses the property-block output. Each event is a run of
// KEY=VALUE lines terminated by a blank line.
func (w *Watcher) consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	props := make(map[string]string)

	flush := func() {
		ev, ok := eventFromProps(props)
		props = make(map[string]string)
		if !ok {
			return
		}
		select {
		case w.events <- ev:
		case <-ctx.Done():
		default:
			w.logger.Warn("hotplug event dropped, buffer full", "device", ev.Device)
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			props[key] = value
		}
	}
	flush()

	return scanner.Err()
}

// eventFromProps keeps add and remove actions on named devices and
// ignores everything else udev reports (change, bind, unnamed nodes).
func eventFromProps(props map[string]string) (events.HardwareHotplug, bool) {
	action := props["ACTION"]
	device := props["DEVNAME"]
	if device == "" || (action != "add" && action != "remove") {
		return events.HardwareHotplug{}, false
	}
	devType := props["DEVTYPE"]
	if devType == "" {
		devType = "disk"
	}
	return events.HardwareHotplug{
		Action:     action,
		Device:     device,
		DeviceType: devType,
		Timestamp:  time.Now().UTC(),
	}, true
}
