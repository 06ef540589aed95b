package v1

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the envelope layout produced by this package.
const SchemaVersion = 1

// Envelope is the versioned wire shape of every governance event leaving the
// engine. Consumers must ignore fields they do not understand.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	Sequence         uint64          `json:"sequence"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// DecodeData unmarshals the event payload into out.
func (e Envelope) DecodeData(out any) error {
	return json.Unmarshal(e.Data, out)
}
