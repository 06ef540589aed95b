package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	contractsv1 "daogov/contracts/gen/events/v1"
	"daogov/contexts/governance/dao-engine/application/workers"
	"daogov/internal/platform/messaging"
	"daogov/internal/platform/metrics"
)

const journalConsumerGroup = "dao-event-journal"

// eventBus keeps the in-process bus reachable for subscriptions while
// publishing through the configured fan-out.
type eventBus struct {
	kafka     *messaging.Kafka
	publisher messaging.Publisher
}

func (b *eventBus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	return b.publisher.Publish(ctx, topic, event)
}

type workerLoop struct {
	relay        *workers.OutboxRelay
	expiry       *workers.ExpiryFinalizer
	bus          *eventBus
	pollInterval time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// run ticks until ctx is cancelled. A failed pass is logged and retried on
// the next tick; nothing here is fatal for the process.
func (l *workerLoop) run(ctx context.Context) error {
	if l.pollInterval <= 0 {
		return errors.New("worker poll interval must be positive")
	}
	if l.bus != nil {
		if err := l.bus.kafka.Subscribe(ctx, "dao.*", journalConsumerGroup, l.journal); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()
	for {
		l.tick(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *workerLoop) tick(ctx context.Context) {
	if l.expiry != nil {
		finalized, err := l.expiry.RunOnce(ctx)
		l.metrics.AddFinalized(finalized)
		if err != nil {
			l.metrics.WorkerFailed("expiry_finalizer")
			l.logger.Warn("expiry pass failed",
				"event", "bootstrap_expiry_pass_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
	if l.relay != nil {
		published, err := l.relay.RunOnce(ctx)
		l.metrics.AddPublished(published)
		if err != nil {
			l.metrics.WorkerFailed("outbox_relay")
			l.logger.Warn("relay pass failed",
				"event", "bootstrap_relay_pass_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
}

func (l *workerLoop) journal(_ context.Context, event contractsv1.Envelope) error {
	l.logger.Info("governance event observed",
		"event", "dao_event_journaled",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"sequence", event.Sequence,
		"partition_key", event.PartitionKey,
	)
	return nil
}
