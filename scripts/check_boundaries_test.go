package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := "package x\n\nimport (\n"
	for _, imp := range imports {
		src += "\t_ \"" + imp + "\"\n"
	}
	src += ")\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestCollectViolationsFlagsLayerBreaches(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")
	writeSource(t, root, "governance/dao-engine/domain/services/engine.go",
		"strings",
		"daogov/contexts/governance/dao-engine/domain/entities",
		"daogov/internal/platform/abi",
	)
	writeSource(t, root, "governance/dao-engine/application/commands/governance.go",
		"daogov/contexts/governance/dao-engine/ports",
		"daogov/contexts/governance/dao-engine/adapters/memory",
		"daogov/contracts/gen/events/v1",
	)
	writeSource(t, root, "governance/dao-engine/ports/ports.go",
		"daogov/contexts/governance/dao-engine/domain/entities",
		"gorm.io/gorm",
	)
	writeSource(t, root, "governance/dao-engine/module.go",
		"daogov/contexts/treasury/other/domain",
	)

	got := map[string]int{}
	for _, v := range collectViolations(root) {
		got[v.Rule]++
	}

	want := map[string]int{
		"domain must not import runtime infrastructure":       1,
		"domain import is outside explicit allowlist":         1,
		"application must not import adapters":                1,
		"ports may only reference domain types and contracts": 1,
		"application import is outside explicit allowlist":    1,
		"cross-module imports are forbidden":                  1,
	}
	for rule, count := range want {
		if got[rule] != count {
			t.Fatalf("rule %q: expected %d violations, got %d (all: %v)", rule, count, got[rule], got)
		}
	}
}

func TestCollectViolationsPassesCleanContext(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")
	writeSource(t, root, "governance/dao-engine/domain/entities/proposal.go", "time")
	writeSource(t, root, "governance/dao-engine/adapters/postgres/repository.go",
		"gorm.io/gorm",
		"daogov/internal/platform/db",
	)

	if violations := collectViolations(root); len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}
