package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func articleEntry(userID int64, entityID, action string) LogEntry {
	return LogEntry{
		UserID:     userID,
		EntityType: EntityArticle,
		EntityID:   entityID,
		Action:     action,
		Outcome:    OutcomeSuccess,
	}
}

func TestInMemoryRepository_RecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LogEntry)
		wantErr error
	}{
		{"valid", func(*LogEntry) {}, nil},
		{"missing entity type", func(e *LogEntry) { e.EntityType = "" }, ErrInvalidEntityType},
		{"missing entity id", func(e *LogEntry) { e.EntityID = "" }, ErrInvalidEntityID},
		{"missing action", func(e *LogEntry) { e.Action = "" }, ErrInvalidAction},
		{"unknown outcome", func(e *LogEntry) { e.Outcome = "maybe" }, ErrInvalidOutcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewInMemoryRepository()
			in := articleEntry(1, "42", ActionCreateArticle)
			tt.mutate(&in)

			e, err := repo.Record(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Record() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (e.ID == "" || e.CreatedAt.IsZero()) {
				t.Errorf("entry missing id or timestamp: %+v", e)
			}
		})
	}
}

func TestInMemoryRepository_ListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, action := range []string{ActionCreateArticle, ActionUpdateArticle, ActionDeleteArticle} {
		if _, err := repo.Record(ctx, articleEntry(7, "3", action)); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := repo.List(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Action != ActionDeleteArticle || all[2].Action != ActionCreateArticle {
		t.Errorf("order = %s, %s, %s", all[0].Action, all[1].Action, all[2].Action)
	}

	limited, _ := repo.List(ctx, 2)
	if len(limited) != 2 || limited[0].Action != ActionDeleteArticle {
		t.Errorf("limited = %+v", limited)
	}

	empty, _ := NewInMemoryRepository().List(ctx, 0)
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty repository should return an empty slice, got %#v", empty)
	}
}

func TestInMemoryRepository_QueryByEntity(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	_, _ = repo.Record(ctx, articleEntry(1, "1", ActionCreateArticle))
	_, _ = repo.Record(ctx, articleEntry(1, "2", ActionCreateArticle))
	_, _ = repo.Record(ctx, articleEntry(1, "1", ActionUpdateArticle))
	_, _ = repo.Record(ctx, LogEntry{UserID: 1, EntityType: EntityUser, EntityID: "1", Action: ActionListUsers, Outcome: OutcomeSuccess})

	got, _ := repo.QueryByEntity(ctx, EntityArticle, "1", 0)
	if len(got) != 2 || got[0].Action != ActionUpdateArticle {
		t.Errorf("QueryByEntity = %+v", got)
	}
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	e, _ := repo.Record(ctx, articleEntry(1, "1", ActionCreateArticle))
	e.Action = "tampered"

	all, _ := repo.List(ctx, 0)
	all[0].EntityID = "tampered"

	again, _ := repo.List(ctx, 0)
	if again[0].Action != ActionCreateArticle || again[0].EntityID != "1" {
		t.Errorf("stored entry was modified: %+v", again[0])
	}
}

func TestInMemoryRepository_HashChain(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var recorded []*Entry
	for i, action := range []string{ActionCreateArticle, ActionUpdateArticle, ActionDeleteArticle} {
		e, err := repo.Record(ctx, articleEntry(int64(i+1), "9", action))
		if err != nil {
			t.Fatal(err)
		}
		recorded = append(recorded, e)
	}

	if recorded[0].PreviousHash != "" {
		t.Errorf("first entry PreviousHash = %q, want empty", recorded[0].PreviousHash)
	}
	for i := 1; i < len(recorded); i++ {
		if recorded[i].PreviousHash != Hash(recorded[i-1]) {
			t.Errorf("entry %d does not chain to its predecessor", i)
		}
	}
	if err := VerifyChain(recorded); err != nil {
		t.Errorf("VerifyChain() = %v", err)
	}
}

func TestVerifyChain_DetectsTampering(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = repo.Record(ctx, articleEntry(1, "5", ActionUpdateArticle))
	}
	newest, _ := repo.List(ctx, 0)
	chain := []*Entry{newest[2], newest[1], newest[0]}

	t.Run("modified entry", func(t *testing.T) {
		tampered := *chain[1]
		tampered.UserID = 99
		err := VerifyChain([]*Entry{chain[0], &tampered, chain[2]})
		if !errors.Is(err, ErrChainBroken) {
			t.Errorf("VerifyChain() = %v, want ErrChainBroken", err)
		}
	})

	t.Run("deleted entry", func(t *testing.T) {
		err := VerifyChain([]*Entry{chain[0], chain[2]})
		if !errors.Is(err, ErrChainBroken) {
			t.Errorf("VerifyChain() = %v, want ErrChainBroken", err)
		}
	})
}

func TestHash_CoversEveryField(t *testing.T) {
	base := Entry{ID: "a", UserID: 1, EntityType: EntityArticle, EntityID: "1", Action: ActionCreateArticle, Outcome: OutcomeSuccess}
	mutations := map[string]func(*Entry){
		"id":            func(e *Entry) { e.ID = "b" },
		"user":          func(e *Entry) { e.UserID = 2 },
		"entity type":   func(e *Entry) { e.EntityType = EntityUser },
		"entity id":     func(e *Entry) { e.EntityID = "2" },
		"action":        func(e *Entry) { e.Action = ActionDeleteArticle },
		"outcome":       func(e *Entry) { e.Outcome = OutcomeFailure },
		"request id":    func(e *Entry) { e.RequestID = "req" },
		"ip":            func(e *Entry) { e.IPAddress = "10.0.0.1" },
		"user agent":    func(e *Entry) { e.UserAgent = "curl" },
		"previous hash": func(e *Entry) { e.PreviousHash = "00" },
	}
	want := Hash(&base)
	for name, mutate := range mutations {
		e := base
		mutate(&e)
		if Hash(&e) == want {
			t.Errorf("changing %s does not change the hash", name)
		}
	}
}

func TestInMemoryRepository_ConcurrentChain(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Record(ctx, articleEntry(1, "1", ActionUpdateArticle))
		}()
	}
	wg.Wait()

	newest, _ := repo.List(ctx, 0)
	chain := make([]*Entry, len(newest))
	for i, e := range newest {
		chain[len(newest)-1-i] = e
	}
	if err := VerifyChain(chain); err != nil {
		t.Errorf("concurrent appends broke the chain: %v", err)
	}
}
