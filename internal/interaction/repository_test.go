package interaction

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"", TypeLike, nil},
		{"  Bookmark ", TypeBookmark, nil},
		{"share", TypeShare, nil},
		{"view", TypeView, nil},
		{"dislike", "", ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeType(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeType(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInMemoryRepository_Record(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	inputs := []*Interaction{
		{UserID: 1, ArticleID: 10},
		{UserID: 1, ArticleID: 0, Type: TypeShare},
		{UserID: 2, ArticleID: 10, Type: TypeBookmark},
	}
	for _, i := range inputs {
		if err := repo.Record(ctx, i); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if inputs[0].Type != TypeLike {
		t.Errorf("expected default type %q, got %q", TypeLike, inputs[0].Type)
	}

	if err := repo.Record(ctx, &Interaction{UserID: 1, Type: "poke"}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}

	list, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(list) != 2 || list[0].Type != TypeShare || list[1].Type != TypeLike {
		t.Errorf("unexpected list order: %+v", list)
	}

	if n, _ := repo.CountInteractions(ctx); n != 3 {
		t.Errorf("CountInteractions() = %d, want 3", n)
	}
}

func TestInMemoryRepository_RecordRead(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	for i := 0; i < 3; i++ {
		rd := &Read{UserID: 1, ArticleID: 5}
		if err := repo.RecordRead(ctx, rd); err != nil {
			t.Fatalf("RecordRead() error = %v", err)
		}
		if rd.ID != int64(i+1) || rd.ReadAt.IsZero() {
			t.Errorf("unexpected read entry: %+v", rd)
		}
	}
	if n, _ := repo.CountReads(ctx); n != 3 {
		t.Errorf("CountReads() = %d, want 3", n)
	}
}
