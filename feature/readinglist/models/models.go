package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ReadingList is a named collection of saved articles.
//
// RemoteID is nil until the remote service confirms creation; it is assigned
// once and never changes. IsUpdatedLocally marks local edits not yet pushed.
// Deletion is soft (IsDeletedLocally) until the remote delete succeeds, at
// which point the row is removed.
type ReadingList struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	RemoteID        *int64 `gorm:"index" json:"remote_id,omitempty"`
	Name            string `json:"name"`
	CanonicalName   string `gorm:"index" json:"-"`
	ListDescription string `json:"description"`

	// IsDefault marks the single default list that save-article targets.
	IsDefault        bool `json:"is_default"`
	IsDeletedLocally bool `gorm:"index" json:"-"`
	IsUpdatedLocally bool `gorm:"index" json:"-"`

	// EntryCount caches the number of non-deleted entries.
	EntryCount int64 `json:"entry_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Entries []ReadingListEntry `gorm:"foreignKey:ListID" json:"-"`
}

// ReadingListEntry ties one article to one reading list.
// At most one non-deleted entry exists per (list, article key) pair.
type ReadingListEntry struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	RemoteEntryID *int64 `gorm:"index" json:"remote_entry_id,omitempty"`
	ListID        uint   `gorm:"index" json:"list_id"`

	ArticleKey   string `gorm:"index" json:"article_key"`
	DisplayTitle string `json:"display_title"`

	IsDeletedLocally bool `gorm:"index" json:"-"`
	IsUpdatedLocally bool `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Article is the saved-state view of an article across all lists.
// SavedAt is non-nil exactly when the article belongs to at least one list;
// the store recomputes it after every membership change.
type Article struct {
	Key          string     `gorm:"primaryKey" json:"key"`
	DisplayTitle string     `json:"display_title"`
	SavedAt      *time.Time `json:"saved_at,omitempty"`
}

// Setting is a single keyed integer value, used for the persisted sync state
// and the incremental-sync watermark.
type Setting struct {
	Key      string `gorm:"primaryKey"`
	IntValue int64
}

// CanonicalName normalizes a list name for name-based matching: Unicode NFC,
// case folded, surrounding whitespace trimmed.
func CanonicalName(name string) string {
	folded := cases.Fold().String(norm.NFC.String(name))
	return strings.TrimSpace(folded)
}

// ArticleKey derives the stable content identifier for an article from its
// project host and title. Titles are NFC-normalized with spaces collapsed to
// underscores, matching the canonical URL form.
func ArticleKey(project, title string) string {
	t := norm.NFC.String(strings.TrimSpace(title))
	t = strings.ReplaceAll(t, " ", "_")
	return fmt.Sprintf("%s#%s", strings.ToLower(strings.TrimSpace(project)), t)
}

// SplitArticleKey recovers the project host and display-form title from an
// article key.
func SplitArticleKey(key string) (project, title string) {
	project, title, ok := strings.Cut(key, "#")
	if !ok {
		return "", key
	}
	return project, strings.ReplaceAll(title, "_", " ")
}
