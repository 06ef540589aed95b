package commands

import (
	"encoding/json"
	"strings"

	contractsv1 "daogov/contracts/gen/events/v1"
	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/contexts/governance/dao-engine/ports"
)

func newGovernanceEnvelope(eventID string, sourceService string, event entities.Event) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(event.Attributes)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        string(event.Type),
		Sequence:         event.Sequence,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: partitionKeyPath(event.PartitionKey),
		PartitionKey:     event.PartitionKey,
		Data:             payload,
	}, nil
}

// Proposal-scoped events share the proposal partition; custody events are
// partitioned by voter and admin events by a single access key.
func partitionKeyPath(key string) string {
	switch {
	case strings.HasPrefix(key, "proposal-"):
		return "proposal_id"
	case key == "access":
		return "access"
	default:
		return "voter"
	}
}
