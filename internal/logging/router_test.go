package logging_test

import (
	"context"
	"testing"
	"time"

	"crowdsim/internal/logging"
	"crowdsim/internal/logging/sinks"
)

func waitForEvents(t *testing.T, sink *sinks.Memory, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := sink.Events(); len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(sink.Events()))
	return nil
}

func TestRouterDeliversToSinks(t *testing.T) {
	sink := sinks.NewMemory()
	r := logging.NewRouter(logging.DefaultConfig(), []logging.NamedSink{{Name: "mem", Sink: sink}})
	defer r.Close(context.Background())

	r.Publish(context.Background(), logging.Event{Type: logging.EventAgentSpawned, Severity: logging.SeverityInfo, Tick: 7})

	events := waitForEvents(t, sink, 1)
	if events[0].Type != logging.EventAgentSpawned || events[0].Tick != 7 {
		t.Fatalf("unexpected delivered event: %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("expected the router to stamp wall-clock time")
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	sink := sinks.NewMemory()
	cfg := logging.Config{BufferSize: 16, MinimumSeverity: logging.SeverityWarn}
	r := logging.NewRouter(cfg, []logging.NamedSink{{Name: "mem", Sink: sink}})

	r.Publish(context.Background(), logging.Event{Type: logging.EventAgentSpawned, Severity: logging.SeverityInfo})
	r.Publish(context.Background(), logging.Event{Type: logging.EventFireIgnited, Severity: logging.SeverityWarn})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Close(ctx)

	events := sink.Events()
	if len(events) != 1 || events[0].Type != logging.EventFireIgnited {
		t.Fatalf("expected only the warn-level event delivered, got %+v", events)
	}
}

func TestPublishAfterCloseIsSilentlyDropped(t *testing.T) {
	sink := sinks.NewMemory()
	r := logging.NewRouter(logging.DefaultConfig(), []logging.NamedSink{{Name: "mem", Sink: sink}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Close(ctx)

	r.Publish(context.Background(), logging.Event{Type: logging.EventAgentSpawned, Severity: logging.SeverityInfo})
}

func TestNopPublisherDiscards(t *testing.T) {
	p := logging.NopPublisher()
	p.Publish(context.Background(), logging.Event{Type: logging.EventAgentSpawned})
}

func TestPublisherFuncAdapts(t *testing.T) {
	var got []logging.Event
	p := logging.PublisherFunc(func(_ context.Context, e logging.Event) { got = append(got, e) })
	p.Publish(context.Background(), logging.Event{Type: logging.EventSweepProgress})
	if len(got) != 1 || got[0].Type != logging.EventSweepProgress {
		t.Fatalf("expected the adapted func to receive the event, got %+v", got)
	}
}
