package schema

import (
	"errors"
	"strings"
	"testing"
)

// TestPurpose: Validates template expansion, the only mechanism that turns tenant-agnostic SQL into schema-qualified SQL.
// Scope: Unit Test
// Expected: Every placeholder occurrence expands to the quoted schema; parameter markers pass through untouched; templates without the placeholder are refused.
// Test Case ID: SCH-03
func TestExpand(t *testing.T) {
	stmt, err := Expand(`SELECT id FROM {{schema}}.clients WHERE id = $1`, "tenant_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt != `SELECT id FROM "tenant_abc".clients WHERE id = $1` {
		t.Errorf("unexpected expansion: %q", stmt)
	}

	// Every occurrence is expanded
	multi, err := Expand(`INSERT INTO {{schema}}.tasks SELECT * FROM {{schema}}.tasks_old`, "tenant_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(multi, Placeholder) {
		t.Errorf("placeholder left unexpanded: %q", multi)
	}
	if strings.Count(multi, `"tenant_abc"`) != 2 {
		t.Errorf("expected two expansions, got %q", multi)
	}
}

func TestExpand_MissingPlaceholder(t *testing.T) {
	// A template with no placeholder would silently run against the
	// caller's default search path; that must never happen.
	_, err := Expand(`SELECT id FROM clients`, "tenant_abc")
	if !errors.Is(err, ErrMissingPlaceholder) {
		t.Errorf("expected ErrMissingPlaceholder, got %v", err)
	}
}

func TestExpand_InvalidSchema(t *testing.T) {
	_, err := Expand(`SELECT 1 FROM {{schema}}.clients`, `bad"; DROP SCHEMA x`)
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("expected ErrInvalidIdentifier, got %v", err)
	}
}
