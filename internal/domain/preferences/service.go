// Package preferences keeps per-user UI state on the server: favourite
// items, recently used items and the manual ordering of queues.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/platform/kvstore"
)

const (
	MaxRecents = 20
	MaxItems   = 500
)

type Kind string

const (
	KindFavorites Kind = "favorites"
	KindRecents   Kind = "recents"
	KindOrder     Kind = "order"
)

var ErrInvalid = errors.New("invalid preference")

var listName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFavorites, KindRecents, KindOrder:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalid, s)
}

func key(kind Kind, list string) (string, error) {
	if !listName.MatchString(list) {
		return "", fmt.Errorf("%w: list name %q", ErrInvalid, list)
	}
	return string(kind) + ":" + list, nil
}

type Service struct {
	store  kvstore.Store
	logger zerolog.Logger
}

func NewService(store kvstore.Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) load(ctx context.Context, userID string, kind Kind, list string) ([]string, error) {
	k, err := key(kind, list)
	if err != nil {
		return nil, err
	}
	var items []string
	if err := s.store.Load(ctx, userID, k, &items); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, userID string, kind Kind, list string, items []string) error {
	k, err := key(kind, list)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, userID, k, items)
}

// update applies fn to the stored list and persists the result.
func (s *Service) update(ctx context.Context, userID string, kind Kind, list string, fn func([]string) []string) ([]string, error) {
	var items []string
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.load(ctx, userID, kind, list)
		if err != nil {
			return err
		}
		items = fn(current)
		return s.save(ctx, userID, kind, list, items)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("kind", string(kind)).Str("list", list).Int("items", len(items)).Msg("preference updated")
	return items, nil
}

func cleanItem(item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", fmt.Errorf("%w: item is required", ErrInvalid)
	}
	return item, nil
}

// dedupe keeps the first occurrence of every non-blank item.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func without(items []string, item string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != item {
			out = append(out, it)
		}
	}
	return out
}

func (s *Service) Get(ctx context.Context, userID string, kind Kind, list string) ([]string, error) {
	return s.load(ctx, userID, kind, list)
}

// Replace stores items as given, de-duplicated. Recents are capped.
func (s *Service) Replace(ctx context.Context, userID string, kind Kind, list string, items []string) ([]string, error) {
	items = dedupe(items)
	limit := MaxItems
	if kind == KindRecents {
		limit = MaxRecents
	}
	if len(items) > limit {
		if kind != KindRecents {
			return nil, fmt.Errorf("%w: at most %d items", ErrInvalid, limit)
		}
		items = items[:limit]
	}
	return s.update(ctx, userID, kind, list, func([]string) []string { return items })
}

func (s *Service) Clear(ctx context.Context, userID string, kind Kind, list string) error {
	k, err := key(kind, list)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, userID, k)
}

func (s *Service) Favorites(ctx context.Context, userID, list string) ([]string, error) {
	return s.load(ctx, userID, KindFavorites, list)
}

// AddFavorite appends item unless it is already a favourite.
func (s *Service) AddFavorite(ctx context.Context, userID, list, item string) ([]string, error) {
	item, err := cleanItem(item)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, KindFavorites, list, func(items []string) []string {
		for _, it := range items {
			if it == item {
				return items
			}
		}
		if len(items) >= MaxItems {
			return items
		}
		return append(items, item)
	})
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, list, item string) ([]string, error) {
	item, err := cleanItem(item)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, KindFavorites, list, func(items []string) []string {
		return without(items, item)
	})
}

func (s *Service) Recents(ctx context.Context, userID, list string) ([]string, error) {
	return s.load(ctx, userID, KindRecents, list)
}

// RecordRecent moves item to the front of the recents list, keeping at most
// MaxRecents entries.
func (s *Service) RecordRecent(ctx context.Context, userID, list, item string) ([]string, error) {
	item, err := cleanItem(item)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, KindRecents, list, func(items []string) []string {
		out := append([]string{item}, without(items, item)...)
		if len(out) > MaxRecents {
			out = out[:MaxRecents]
		}
		return out
	})
}

func (s *Service) Order(ctx context.Context, userID, list string) ([]string, error) {
	return s.load(ctx, userID, KindOrder, list)
}

func (s *Service) SetOrder(ctx context.Context, userID, list string, ids []string) ([]string, error) {
	return s.Replace(ctx, userID, KindOrder, list, ids)
}
