// Package interaction records reading history and user interactions with articles.
package interaction

import (
	"errors"
	"strings"
	"time"
)

// Interaction types.
const (
	TypeLike     = "like"
	TypeBookmark = "bookmark"
	TypeShare    = "share"
	TypeView     = "view"
)

// DefaultType is used when a request omits the interaction type.
const DefaultType = TypeLike

// ErrInvalidType is returned for unknown interaction types.
var ErrInvalidType = errors.New("invalid interaction type")

// Interaction is a user's action on an article.
// ArticleID is 0 for live provider articles, which have no catalog row.
type Interaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ArticleID int64     `json:"article_id"`
	Type      string    `json:"interaction_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Read is a reading history entry.
type Read struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ArticleID int64     `json:"article_id"`
	ReadAt    time.Time `json:"read_at"`
}

// NormalizeType lowercases t, applies the default and validates it.
func NormalizeType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "":
		return DefaultType, nil
	case TypeLike, TypeBookmark, TypeShare, TypeView:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}
