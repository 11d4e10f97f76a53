//go:build integration

package user_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/onnwee/newsai/internal/db"
	"github.com/onnwee/newsai/internal/user"
)

func TestPostgresRepository_Users(t *testing.T) {
	conn := db.StartTestPostgres(t)
	repo := user.NewPostgresRepository(conn, nil)
	ctx := context.Background()

	u := &user.User{Email: "Reader@Example.com", PasswordHash: "hash", Name: "Reader"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("expected ID and created_at, got %+v", u)
	}

	err := repo.Create(ctx, &user.User{Email: "reader@example.com", PasswordHash: "hash"})
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "READER@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID || got.Role != user.RoleUser {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestPostgresPreferenceRepository(t *testing.T) {
	conn := db.StartTestPostgres(t)
	users := user.NewPostgresRepository(conn, nil)
	prefs := user.NewPostgresPreferenceRepository(conn)
	ctx := context.Background()

	u := &user.User{Email: "prefs@example.com", PasswordHash: "hash"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	empty, err := prefs.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(empty.Interests) != 0 || len(empty.PreferredSources) != 0 {
		t.Errorf("expected empty preferences, got %+v", empty)
	}

	for _, interests := range [][]string{{"tech"}, {"science", "world news", "science"}} {
		p := &user.Preferences{UserID: u.ID, Interests: interests, PreferredSources: []string{"BBC"}}
		if err := prefs.Upsert(ctx, p); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	got, err := prefs.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got.Interests, []string{"science", "world news"}) {
		t.Errorf("Interests = %q", got.Interests)
	}
	if !reflect.DeepEqual(got.PreferredSources, []string{"BBC"}) {
		t.Errorf("PreferredSources = %q", got.PreferredSources)
	}
}
