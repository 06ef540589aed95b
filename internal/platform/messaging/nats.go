package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	contractsv1 "daogov/contracts/gen/events/v1"

	"github.com/nats-io/nats.go"
)

// NATS publishes relayed events to an external NATS server. Subjects are the
// outbox topics unchanged.
type NATS struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func ConnectNATS(url string, name string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info("nats connected",
		"event", "nats_connected",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"url", conn.ConnectedUrl(),
	)
	return &NATS{conn: conn, logger: logger}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := n.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	n.logger.Debug("event published",
		"event", "nats_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"sequence", event.Sequence,
	)
	return nil
}

func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}

// Publisher is the outbound side shared by the bus adapters.
type Publisher interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}

// Fanout publishes every event to each target in order and stops at the
// first failure, so the outbox row stays pending and is retried.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	for _, target := range f {
		if target == nil {
			continue
		}
		if err := target.Publish(ctx, topic, event); err != nil {
			return err
		}
	}
	return nil
}
