package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "daogov/contexts/governance/dao-engine/application"
	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	// DefaultEngineID names the snapshot row of a single-instance deployment.
	DefaultEngineID = "default"
)

// Repository persists the outbox, idempotency records and engine snapshots
// of one engine instance.
type Repository struct {
	db       *gorm.DB
	engineID string
	logger   *slog.Logger
}

func NewRepository(db *gorm.DB, engineID string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	engineID = strings.TrimSpace(engineID)
	if engineID == "" {
		engineID = DefaultEngineID
	}
	return &Repository{
		db:       db,
		engineID: engineID,
		logger:   logger,
	}
}

// Migrate creates or updates the tables owned by this repository.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&snapshotModel{}, &idempotencyModel{}, &outboxModel{}); err != nil {
		return r.logError("dao_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) SaveSnapshot(ctx context.Context, snapshot entities.Snapshot, savedAt time.Time) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return r.logError("dao_repo_snapshot_marshal_failed", err, "sequence", snapshot.Sequence)
	}
	row := snapshotModel{
		EngineID: r.engineID,
		Sequence: int64(snapshot.Sequence),
		Payload:  payload,
		SavedAt:  savedAt.UTC(),
	}
	// Older sequences never overwrite newer state.
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "engine_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sequence",
			"payload",
			"saved_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "dao_engine_snapshots.sequence <= EXCLUDED.sequence"},
		}},
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dao_repo_snapshot_save_failed", create.Error,
			"engine_id", r.engineID,
			"sequence", snapshot.Sequence,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context) (entities.Snapshot, bool, error) {
	var row snapshotModel
	err := r.db.WithContext(ctx).
		Where("engine_id = ?", r.engineID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Snapshot{}, false, nil
		}
		if isUndefinedTable(err) {
			r.logger.Warn("dao snapshot table missing",
				"event", "dao_repo_snapshot_table_missing",
				"module", application.ModuleName,
				"layer", "adapter",
				"engine_id", r.engineID,
			)
			return entities.Snapshot{}, false, nil
		}
		return entities.Snapshot{}, false, r.logError("dao_repo_snapshot_load_failed", err, "engine_id", r.engineID)
	}
	var snapshot entities.Snapshot
	if err := json.Unmarshal(row.Payload, &snapshot); err != nil {
		return entities.Snapshot{}, false, r.logError("dao_repo_snapshot_decode_failed", err, "engine_id", r.engineID)
	}
	return snapshot, true, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("dao_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && !row.ExpiresAt.After(now.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, r.logError("dao_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", strings.TrimSpace(key),
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		ResultRef:   row.ResultRef,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResultRef:   strings.TrimSpace(record.ResultRef),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrIdempotencyConflict
		}
		return r.logError("dao_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return r.logError("dao_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash || existing.ResultRef != row.ResultRef {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("dao_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		Sequence:     int64(envelope.Sequence),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dao_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("dao_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

// ListPendingOutbox returns pending rows in engine sequence order, then in
// insertion order within one sequence.
func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("sequence ASC").
		Order("position ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dao_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("dao_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", application.ModuleName,
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("dao repository operation failed", fields...)
	return err
}

type snapshotModel struct {
	EngineID string    `gorm:"column:engine_id;primaryKey"`
	Sequence int64     `gorm:"column:sequence"`
	Payload  []byte    `gorm:"column:payload"`
	SavedAt  time.Time `gorm:"column:saved_at"`
}

func (snapshotModel) TableName() string {
	return "dao_engine_snapshots"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	ResultRef   string    `gorm:"column:result_ref"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "dao_engine_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Position     int64      `gorm:"column:position;autoIncrement"`
	EventType    string     `gorm:"column:event_type"`
	Sequence     int64      `gorm:"column:sequence;index"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "dao_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.SnapshotStore = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
