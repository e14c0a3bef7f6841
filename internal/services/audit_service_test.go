package services

import (
	"encoding/json"
	"testing"

	"bookkeeper/internal/models"
	"bookkeeper/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("g1", "u1", "DELETE_RECURRING", "expense", "e1", "127.0.0.1", map[string]interface{}{"target": "all", "count": 3})

		var entries []models.AuditLog
		db.Find(&entries)
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		e := entries[0]
		if e.GroupID != "g1" || e.Action != "DELETE_RECURRING" || e.ResourceID != "e1" {
			t.Errorf("unexpected entry: %+v", e)
		}
		var changes map[string]interface{}
		if err := json.Unmarshal([]byte(e.Changes), &changes); err != nil {
			t.Fatalf("changes are not JSON: %v", err)
		}
		if changes["target"] != "all" {
			t.Errorf("expected target all, got %v", changes["target"])
		}
	})

	t.Run("nil_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("g1", "u1", "CREATE_EXPENSE", "expense", "e1", "", nil)

		var entry models.AuditLog
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("expected entry: %v", err)
		}
		if entry.Changes != "" {
			t.Errorf("expected empty changes, got %q", entry.Changes)
		}
	})

	t.Run("database_error_does_not_panic", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db)
		testutil.TeardownTestDB(t, db)

		svc.Log("g1", "u1", "CREATE_EXPENSE", "expense", "e1", "", nil)
	})
}
