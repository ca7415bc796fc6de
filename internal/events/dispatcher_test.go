package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventWorklogCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventWorklogCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventWorklogDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventWorklogCreated, "JIRAUSER1", SourceMCP, nil))
	if err == nil {
		t.Fatal("expected handler error to be reported")
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected handler calls %v", calls)
	}
}

func TestNewEventAssignsUniqueIDs(t *testing.T) {
	a := NewEvent(EventBatchCompleted, "u", SourceCLI, nil)
	b := NewEvent(EventBatchCompleted, "u", SourceCLI, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false
	d.Subscribe(EventBatchCompleted, func(context.Context, Event) error {
		panic("nil payload")
	})
	d.Subscribe(EventBatchCompleted, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventBatchCompleted, "JIRAUSER1", SourceHTTP, nil))
	if err == nil || !strings.Contains(err.Error(), "panic: nil payload") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
	if !ran {
		t.Fatal("expected later handler to run")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), NewEvent(EventWorklogDeleted, "u", SourceMCP, nil)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
