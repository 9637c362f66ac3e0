package dotphrase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid dot phrase")

type Service struct {
	repo Repository
	lib  *Library
	now  func() time.Time
}

func NewService(repo Repository, lib *Library) *Service {
	return &Service{repo: repo, lib: lib, now: time.Now}
}

func validate(name, content string) error {
	if !strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: name must start with /", ErrInvalid)
	}
	if len(name) < 2 {
		return fmt.Errorf("%w: name is required after /", ErrInvalid)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: name must not contain whitespace", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalid, MaxNameLength)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalid)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *DotPhrase) error {
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := validate(p.Name, p.Content); err != nil {
		return err
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*DotPhrase, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, p *DotPhrase) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := validate(p.Name, p.Content); err != nil {
		return err
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*DotPhrase, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Defaults() []Default {
	return s.lib.All()
}

// Resolve returns the content of the named phrase. The user's own phrase
// shadows a built-in one of the same name.
func (s *Service) Resolve(ctx context.Context, userID, name string) (string, error) {
	p, err := s.repo.GetByName(ctx, userID, name)
	if err == nil {
		return p.Content, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if d, ok := s.lib.Lookup(name); ok {
		return d.Content, nil
	}
	return "", ErrNotFound
}

// Expand resolves name when content is empty and substitutes its tokens.
func (s *Service) Expand(ctx context.Context, userID, name, content string, choices []int) (string, error) {
	if content == "" {
		if name == "" {
			return "", fmt.Errorf("%w: name or content is required", ErrInvalid)
		}
		var err error
		if content, err = s.Resolve(ctx, userID, name); err != nil {
			return "", err
		}
	}
	return Expand(content, choices, s.now()), nil
}
