//go:build integration

// Integration tests in this package start PostgreSQL with testcontainers.
// Run with: go test -tags=integration -v ./internal/db/...
package db

import (
	"context"
	"testing"
)

// TestMigrate_Twice verifies the schema can be applied repeatedly.
func TestMigrate_Twice(t *testing.T) {
	conn := StartTestPostgres(t)

	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}

	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name IN ('users','articles','user_preferences','reading_history','user_interactions','admin_audit_log')`).Scan(&n)
	if err != nil {
		t.Fatalf("failed to query tables: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 tables, got %d", n)
	}
}
