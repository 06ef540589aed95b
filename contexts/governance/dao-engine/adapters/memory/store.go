package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	position  uint64
	published bool
}

// Store keeps idempotency records, the outbox and the latest snapshot in
// memory. Its clock is fixed once set, which lets tests move time across
// proposal deadlines.
type Store struct {
	mu sync.RWMutex

	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]outboxRecord
	appended    uint64

	snapshot      entities.Snapshot
	snapshotSaved bool
	savedAt       time.Time

	now *time.Time
}

func NewStore() *Store {
	return &Store{
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

// SetNow pins the store clock. A zero time returns it to wall-clock time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.IsZero() {
		s.now = nil
		return
	}
	pinned := now.UTC()
	s.now = &pinned
}

// Advance moves a pinned clock forward, pinning it at wall-clock time first if
// needed.
func (s *Store) Advance(d time.Duration) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := time.Now().UTC()
	if s.now != nil {
		base = *s.now
	}
	next := base.Add(d)
	s.now = &next
	return next
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	existing, exists := s.idempotency[key]
	if exists {
		if existing.RequestHash != record.RequestHash || existing.ResultRef != record.ResultRef {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResultRef:   strings.TrimSpace(record.ResultRef),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.appended++
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
		position: s.appended,
	}
	return nil
}

// ListPendingOutbox returns unpublished rows in append order.
func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].position < rows[j].position
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) SaveSnapshot(_ context.Context, snapshot entities.Snapshot, savedAt time.Time) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	var copied entities.Snapshot
	if err := json.Unmarshal(raw, &copied); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotSaved && snapshot.Sequence < s.snapshot.Sequence {
		return domainerrors.ErrConflict
	}
	s.snapshot = copied
	s.snapshotSaved = true
	s.savedAt = savedAt.UTC()
	return nil
}

func (s *Store) LoadSnapshot(_ context.Context) (entities.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.snapshotSaved {
		return entities.Snapshot{}, false, nil
	}
	raw, err := json.Marshal(s.snapshot)
	if err != nil {
		return entities.Snapshot{}, false, err
	}
	var copied entities.Snapshot
	if err := json.Unmarshal(raw, &copied); err != nil {
		return entities.Snapshot{}, false, err
	}
	return copied, true, nil
}
