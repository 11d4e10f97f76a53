//go:build integration

package audit_test

import (
	"context"
	"testing"

	"github.com/onnwee/newsai/internal/audit"
	"github.com/onnwee/newsai/internal/db"
)

func TestPostgresRepository(t *testing.T) {
	conn := db.StartTestPostgres(t)
	ctx := context.Background()
	repo := audit.NewPostgresRepository(conn, nil)

	actions := []string{audit.ActionCreateArticle, audit.ActionUpdateArticle, audit.ActionDeleteArticle}
	for _, action := range actions {
		_, err := repo.Record(ctx, audit.LogEntry{
			UserID:     1,
			EntityType: audit.EntityArticle,
			EntityID:   "17",
			Action:     action,
			Outcome:    audit.OutcomeSuccess,
			IPAddress:  "192.0.2.1",
		})
		if err != nil {
			t.Fatalf("Record(%s) error = %v", action, err)
		}
	}
	if _, err := repo.Record(ctx, audit.LogEntry{UserID: 1, EntityType: audit.EntityUser, EntityID: "all", Action: audit.ActionListUsers, Outcome: audit.OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}

	newest, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(newest) != 4 || newest[0].Action != audit.ActionListUsers {
		t.Fatalf("List() = %+v", newest)
	}

	chain := make([]*audit.Entry, len(newest))
	for i, e := range newest {
		chain[len(newest)-1-i] = e
	}
	if err := audit.VerifyChain(chain); err != nil {
		t.Errorf("stored chain does not verify: %v", err)
	}

	byEntity, err := repo.QueryByEntity(ctx, audit.EntityArticle, "17", 2)
	if err != nil {
		t.Fatalf("QueryByEntity() error = %v", err)
	}
	if len(byEntity) != 2 || byEntity[0].Action != audit.ActionDeleteArticle {
		t.Errorf("QueryByEntity() = %+v", byEntity)
	}
}
