package alerting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hostmond/hostmond/internal/config"
)

// fakeChannel counts send attempts and fails on demand.
type fakeChannel struct {
	name    string
	enabled bool
	fail    bool
	sends   atomic.Int64
	last    Message
}

func (f *fakeChannel) Name() string  { return f.name }
func (f *fakeChannel) Enabled() bool { return f.enabled }

func (f *fakeChannel) Send(_ context.Context, msg Message) error {
	f.sends.Add(1)
	f.last = msg
	if f.fail {
		return errors.New("transport unreachable")
	}
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatch_SuppressedEventTypeAttemptsNothing(t *testing.T) {
	ch := &fakeChannel{name: "email", enabled: true}
	d := NewDispatcher([]Channel{ch}, map[string]bool{"disk_added": false}, discard())

	results := d.Dispatch(context.Background(), Message{EventType: "disk_added", Title: "t"})
	if len(results) != 0 {
		t.Fatalf("expected empty result map, got %v", results)
	}
	if ch.sends.Load() != 0 {
		t.Fatalf("expected zero channel attempts, got %d", ch.sends.Load())
	}
}

func TestDispatch_UnknownEventTypeIsSuppressed(t *testing.T) {
	ch := &fakeChannel{name: "email", enabled: true}
	d := NewDispatcher([]Channel{ch}, map[string]bool{}, discard())

	if results := d.Dispatch(context.Background(), Message{EventType: "made_up"}); len(results) != 0 {
		t.Fatalf("expected empty result map, got %v", results)
	}
}

func TestDispatch_PartialFailureIsolation(t *testing.T) {
	failing := &fakeChannel{name: "pushover", enabled: true, fail: true}
	working := &fakeChannel{name: "ntfy", enabled: true}
	d := NewDispatcher([]Channel{failing, working}, map[string]bool{"disk_removed": true}, discard())

	results := d.Dispatch(context.Background(), Message{EventType: "disk_removed", Priority: PriorityWarning})

	if len(results) != 2 {
		t.Fatalf("expected results for both enabled channels, got %v", results)
	}
	if results["pushover"] {
		t.Error("failing channel must report false")
	}
	if !results["ntfy"] {
		t.Error("working channel must report true despite the other failing")
	}
	if working.sends.Load() != 1 {
		t.Errorf("working channel should have been attempted exactly once, got %d", working.sends.Load())
	}
}

func TestDispatch_DisabledChannelsSkipped(t *testing.T) {
	off := &fakeChannel{name: "email", enabled: false}
	on := &fakeChannel{name: "webhook", enabled: true}
	d := NewDispatcher([]Channel{off, on}, map[string]bool{"resilver_started": true}, discard())

	results := d.Dispatch(context.Background(), Message{EventType: "resilver_started"})
	if _, present := results["email"]; present {
		t.Error("disabled channel must not appear in results")
	}
	if off.sends.Load() != 0 {
		t.Error("disabled channel must not be attempted")
	}
	if !results["webhook"] {
		t.Error("enabled channel should succeed")
	}
}

func TestDispatch_NoIdempotence(t *testing.T) {
	ch := &fakeChannel{name: "ntfy", enabled: true}
	d := NewDispatcher([]Channel{ch}, map[string]bool{"disk_added": true}, discard())

	msg := Message{EventType: "disk_added"}
	d.Dispatch(context.Background(), msg)
	d.Dispatch(context.Background(), msg)
	if ch.sends.Load() != 2 {
		t.Fatalf("duplicate dispatch must send twice, got %d", ch.sends.Load())
	}
}

func TestPushoverChannel_SendsNativePriority(t *testing.T) {
	var gotPriority, gotRetry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		gotPriority = r.FormValue("priority")
		gotRetry = r.FormValue("retry")
	}))
	defer srv.Close()

	ch := NewPushoverChannel(config.PushoverConfig{
		Enabled: true, UserKey: "u", APIToken: "t", Endpoint: srv.URL,
	})
	if err := ch.Send(context.Background(), Message{Priority: PriorityCritical}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotPriority != "2" {
		t.Errorf("critical should map to pushover priority 2, got %q", gotPriority)
	}
	if gotRetry == "" {
		t.Error("emergency priority requires retry parameter")
	}
}

func TestNtfyChannel_SendsHeadersAndBody(t *testing.T) {
	var gotTitle, gotPriority, gotTags, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	ch := NewNtfyChannel(config.NtfyConfig{Enabled: true, Server: srv.URL, Topic: "alerts"})
	err := ch.Send(context.Background(), Message{
		Title: "Disk Removed: sdb", Body: "gone", Priority: PriorityWarning,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotTitle != "Disk Removed: sdb" || gotBody != "gone" {
		t.Errorf("unexpected title/body: %q %q", gotTitle, gotBody)
	}
	if gotPriority != "high" {
		t.Errorf("warning should map to ntfy high, got %q", gotPriority)
	}
	if gotTags != "warning" {
		t.Errorf("warning should tag warning, got %q", gotTags)
	}
}

func TestWebhookChannel_PostsPayload(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(config.WebhookConfig{Enabled: true, URL: srv.URL, Method: "POST"})
	err := ch.Send(context.Background(), Message{
		EventType: "pool_degraded", Title: "Pool Health Changed: tank", Priority: PriorityCritical,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	for _, want := range []string{`"event_type":"pool_degraded"`, `"priority":"critical"`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("payload missing %s: %s", want, gotBody)
		}
	}
}

func TestWebhookChannel_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(config.WebhookConfig{Enabled: true, URL: srv.URL, Method: "POST"})
	if err := ch.Send(context.Background(), Message{EventType: "disk_added"}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
