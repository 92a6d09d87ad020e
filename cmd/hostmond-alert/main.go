// hostmond-alert sends a one-off alert through the configured
// notification channels. Useful for wiring shell scripts and cron jobs
// into the same delivery pipeline the daemon uses.
//
// Usage:
//
//	hostmond-alert [-config path] <event_type> <title> [message] [priority]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hostmond/hostmond/internal/alerting"
	"github.com/hostmond/hostmond/internal/config"
)

func main() {
	configPath := flag.String("config", "/etc/hostmond/config.yaml", "path to configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 || len(args) > 4 {
		fmt.Fprintln(os.Stderr, "usage: hostmond-alert [-config path] <event_type> <title> [message] [priority]")
		os.Exit(2)
	}

	msg := alerting.Message{
		EventType: args[0],
		Title:     args[1],
		Priority:  alerting.PriorityNormal,
	}
	if len(args) >= 3 {
		msg.Body = args[2]
	}
	if len(args) == 4 {
		switch alerting.Priority(args[3]) {
		case alerting.PriorityNormal, alerting.PriorityWarning, alerting.PriorityCritical:
			msg.Priority = alerting.Priority(args[3])
		default:
			fmt.Fprintf(os.Stderr, "invalid priority %q (normal, warning, critical)\n", args[3])
			os.Exit(2)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dispatcher := alerting.NewDispatcherFromConfig(cfg.Alerts, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := dispatcher.Dispatch(ctx, msg)
	if len(results) == 0 {
		fmt.Println("no channels attempted (event type disabled or no channels configured)")
		return
	}

	failed := false
	for channel, delivered := range results {
		status := "sent"
		if !delivered {
			status = "failed"
			failed = true
		}
		fmt.Printf("%s: %s\n", channel, status)
	}
	if failed {
		os.Exit(1)
	}
}
