package ports

import (
	"context"
	"time"

	contractsv1 "daogov/contracts/gen/events/v1"
	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/contexts/governance/dao-engine/domain/services"
)

// AssetLedger and Dispatcher are the external collaborators of the engine.
type AssetLedger = services.AssetLedger

type Dispatcher = services.Dispatcher

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	ResultRef   string
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// SnapshotStore persists the engine state after committed commands.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot entities.Snapshot, savedAt time.Time) error
	LoadSnapshot(ctx context.Context) (entities.Snapshot, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
