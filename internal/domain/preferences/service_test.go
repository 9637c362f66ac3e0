package preferences

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/platform/kvstore"
)

func newTestService() (*Service, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	return NewService(store, zerolog.Nop()), store
}

func TestService_Favorites(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	got, err := svc.Favorites(ctx, "u1", "medications")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty favourites, got %v (%v)", got, err)
	}
	for _, item := range []string{"Apixaban", "Metformin", "Apixaban", " Ramipril "} {
		if _, err := svc.AddFavorite(ctx, "u1", "medications", item); err != nil {
			t.Fatalf("add %q: %v", item, err)
		}
	}
	got, _ = svc.Favorites(ctx, "u1", "medications")
	if diff := cmp.Diff([]string{"Apixaban", "Metformin", "Ramipril"}, got); diff != "" {
		t.Errorf("favourites mismatch (-want +got):\n%s", diff)
	}

	got, err = svc.RemoveFavorite(ctx, "u1", "medications", "Metformin")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"Apixaban", "Ramipril"}, got); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}

	other, _ := svc.Favorites(ctx, "u2", "medications")
	if len(other) != 0 {
		t.Errorf("favourites leaked across users: %v", other)
	}
}

func TestService_RecordRecent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, item := range []string{"/dm2", "/htn", "/dm2"} {
		if _, err := svc.RecordRecent(ctx, "u1", "dot-phrases", item); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, _ := svc.Recents(ctx, "u1", "dot-phrases")
	if diff := cmp.Diff([]string{"/dm2", "/htn"}, got); diff != "" {
		t.Errorf("recents mismatch (-want +got):\n%s", diff)
	}
}

func TestService_RecordRecent_Cap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	var got []string
	for i := 0; i < MaxRecents+5; i++ {
		var err error
		if got, err = svc.RecordRecent(ctx, "u1", "labs", fmt.Sprintf("item-%d", i)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if len(got) != MaxRecents {
		t.Fatalf("expected %d recents, got %d", MaxRecents, len(got))
	}
	if got[0] != fmt.Sprintf("item-%d", MaxRecents+4) || got[MaxRecents-1] != "item-5" {
		t.Errorf("unexpected recents window: first %q last %q", got[0], got[MaxRecents-1])
	}
}

func TestService_Order(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	got, err := svc.SetOrder(ctx, "u1", "queue", []string{"c", "a", "c", "", "b"})
	if err != nil {
		t.Fatalf("set order: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	stored, _ := svc.Order(ctx, "u1", "queue")
	if diff := cmp.Diff(got, stored); diff != "" {
		t.Errorf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestService_Replace_Limits(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	many := make([]string, MaxItems+1)
	for i := range many {
		many[i] = fmt.Sprintf("id-%d", i)
	}
	if _, err := svc.Replace(ctx, "u1", KindOrder, "queue", many); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for oversized order, got %v", err)
	}
	got, err := svc.Replace(ctx, "u1", KindRecents, "labs", many)
	if err != nil || len(got) != MaxRecents {
		t.Errorf("expected recents truncated to %d, got %d (%v)", MaxRecents, len(got), err)
	}
}

func TestService_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.AddFavorite(ctx, "u1", "bad list!", "x"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for list name, got %v", err)
	}
	if _, err := svc.AddFavorite(ctx, "u1", "medications", "  "); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for blank item, got %v", err)
	}
	if _, err := ParseKind("history"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown kind, got %v", err)
	}
}

func TestService_Clear(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	if _, err := svc.AddFavorite(ctx, "u1", "medications", "Apixaban"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, "u1", KindFavorites, "medications"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	var raw []string
	if err := store.Load(ctx, "u1", "favorites:medications", &raw); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("expected key to be deleted, got %v", err)
	}
}
