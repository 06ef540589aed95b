package messaging

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	contractsv1 "daogov/contracts/gen/events/v1"
)

// Handler consumes one delivered event.
type Handler func(context.Context, contractsv1.Envelope) error

type subscription struct {
	pattern string
	ch      chan contractsv1.Envelope
}

// Kafka is the event bus adapter used by the outbox relay. The current
// implementation is in-process publish/subscribe keyed by topic; a pattern
// ending in ".*" receives every topic under that prefix.
type Kafka struct {
	mu            sync.RWMutex
	subscriptions []subscription
	brokers       []string
	logger        *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers: append([]string(nil), brokers...),
		logger:  logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	k.mu.RLock()
	targets := make([]chan contractsv1.Envelope, 0, len(k.subscriptions))
	for _, sub := range k.subscriptions {
		if matches(sub.pattern, topic) {
			targets = append(targets, sub.ch)
		}
	}
	k.mu.RUnlock()

	for _, ch := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- event:
		default:
			k.logger.Warn("dropping event for slow subscriber",
				"event", "kafka_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
		}
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"sequence", event.Sequence,
	)
	return nil
}

// Subscribe delivers matching events to handler on a dedicated goroutine
// until ctx is cancelled. Delivery order per subscription follows publish
// order.
func (k *Kafka) Subscribe(ctx context.Context, pattern string, consumerGroup string, handler Handler) error {
	ch := make(chan contractsv1.Envelope, 128)

	k.mu.Lock()
	k.subscriptions = append(k.subscriptions, subscription{pattern: strings.TrimSpace(pattern), ch: ch})
	k.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				k.removeSubscription(ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"pattern", pattern,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) removeSubscription(target chan contractsv1.Envelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	filtered := k.subscriptions[:0]
	for _, sub := range k.subscriptions {
		if sub.ch != target {
			filtered = append(filtered, sub)
		}
	}
	k.subscriptions = filtered
}

func matches(pattern string, topic string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(topic, prefix)
	}
	return pattern == topic
}
