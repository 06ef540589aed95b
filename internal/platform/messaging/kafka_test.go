package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	contractsv1 "daogov/contracts/gen/events/v1"
)

func TestKafkaDeliversByTopicAndPrefix(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exact := make(chan contractsv1.Envelope, 4)
	prefixed := make(chan contractsv1.Envelope, 4)
	if err := bus.Subscribe(ctx, "dao.vote.cast", "exact", func(_ context.Context, event contractsv1.Envelope) error {
		exact <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe exact: %v", err)
	}
	if err := bus.Subscribe(ctx, "dao.proposal.*", "prefixed", func(_ context.Context, event contractsv1.Envelope) error {
		prefixed <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe prefix: %v", err)
	}

	for _, topic := range []string{"dao.vote.cast", "dao.proposal.created", "dao.custody.deposited"} {
		if err := bus.Publish(ctx, topic, contractsv1.Envelope{EventID: topic, EventType: topic}); err != nil {
			t.Fatalf("publish %s: %v", topic, err)
		}
	}

	select {
	case event := <-exact:
		if event.EventType != "dao.vote.cast" {
			t.Fatalf("unexpected exact delivery %s", event.EventType)
		}
	case <-time.After(time.Second):
		t.Fatalf("exact subscriber received nothing")
	}
	select {
	case event := <-prefixed:
		if event.EventType != "dao.proposal.created" {
			t.Fatalf("unexpected prefixed delivery %s", event.EventType)
		}
	case <-time.After(time.Second):
		t.Fatalf("prefixed subscriber received nothing")
	}
	select {
	case event := <-prefixed:
		t.Fatalf("prefixed subscriber received unrelated event %s", event.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, string, contractsv1.Envelope) error {
	return f.err
}

func TestFanoutStopsAtFirstFailure(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan contractsv1.Envelope, 2)
	if err := bus.Subscribe(ctx, "dao.*", "journal", func(_ context.Context, event contractsv1.Envelope) error {
		delivered <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sentinel := errors.New("broker down")
	fanout := Fanout{failingPublisher{err: sentinel}, bus}
	if err := fanout.Publish(ctx, "dao.vote.cast", contractsv1.Envelope{EventID: "e-1"}); !errors.Is(err, sentinel) {
		t.Fatalf("expected broker error, got %v", err)
	}
	select {
	case event := <-delivered:
		t.Fatalf("event %s delivered after failed target", event.EventID)
	case <-time.After(50 * time.Millisecond):
	}

	if err := (Fanout{nil, bus}).Publish(ctx, "dao.vote.cast", contractsv1.Envelope{EventID: "e-2"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case event := <-delivered:
		if event.EventID != "e-2" {
			t.Fatalf("unexpected event %s", event.EventID)
		}
	case <-time.After(time.Second):
		t.Fatalf("bus received nothing")
	}
}
