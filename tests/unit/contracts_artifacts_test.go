package unit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"daogov/contexts/governance/dao-engine/domain/entities"
)

// daoEventTypes lists every event the engine emits, in contract order.
var daoEventTypes = []entities.EventType{
	entities.EventProposalCreated,
	entities.EventVoted,
	entities.EventUnvoted,
	entities.EventDelegated,
	entities.EventDeposit,
	entities.EventWithdraw,
	entities.EventProposalExecutionSucceeded,
	entities.EventProposalExpired,
	entities.EventOwnershipTransferred,
	entities.EventQuorumChanged,
}

func TestDAOContractArtifactsParse(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	for _, pattern := range []string{"contracts/api/v1/*.json", "contracts/events/v1/*.json"} {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			t.Fatalf("invalid glob pattern %s: %v", pattern, err)
		}
		if len(matches) == 0 {
			t.Fatalf("no contract artifacts match %s", pattern)
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			var payload any
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("invalid json contract file %s: %v", path, err)
			}
		}
	}
}

// Every schema file names an emitted event, and every emitted event has one.
func TestDAOEventSchemaFilesMatchEventTypes(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	known := make(map[string]bool, len(daoEventTypes))
	for _, eventType := range daoEventTypes {
		known[string(eventType)] = false
	}

	matches, err := filepath.Glob(filepath.Join(root, "contracts", "events", "v1", "*.schema.json"))
	if err != nil {
		t.Fatalf("glob event schemas: %v", err)
	}
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".schema.json")
		schema := readEventSchema(t, root, name)
		properties, _ := schema["properties"].(map[string]any)
		eventTypeProp, _ := properties["event_type"].(map[string]any)
		constType, _ := eventTypeProp["const"].(string)
		if constType != name {
			t.Fatalf("schema file %s declares event_type %q", filepath.Base(path), constType)
		}
		if _, ok := known[constType]; !ok {
			t.Fatalf("schema %s has no matching engine event type", constType)
		}
		known[constType] = true
	}
	for eventType, covered := range known {
		if !covered {
			t.Fatalf("event type %s has no schema file", eventType)
		}
	}
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		dir = parent
	}
}
