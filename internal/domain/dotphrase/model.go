package dotphrase

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLength   = 100
	DefaultCategory = "general"
)

// DotPhrase maps to the dot_phrases table. Names are unique per user.
type DotPhrase struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
