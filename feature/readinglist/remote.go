package readinglist

import (
	"context"
	"time"
)

// RemoteList is a reading list as reported by the remote service.
type RemoteList struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"default"`
	Deleted     bool      `json:"deleted"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// RemoteEntry is a reading-list entry as reported by the remote service.
type RemoteEntry struct {
	ID      int64     `json:"id"`
	ListID  int64     `json:"listId"`
	Project string    `json:"project"`
	Title   string    `json:"title"`
	Deleted bool      `json:"deleted"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// ListPayload is the create/update body for a list.
type ListPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EntryPayload is the create body for an entry.
type EntryPayload struct {
	Project string `json:"project"`
	Title   string `json:"title"`
}

// RemoteClient is the contract the sync engine drives. Implementations must
// keep batch-create responses positionally aligned with their request
// payloads: the id at index i belongs to the payload at index i.
type RemoteClient interface {
	// Setup enables list sync for the account on the remote service.
	Setup(ctx context.Context) error
	// Teardown disables list sync and deletes all remote lists.
	Teardown(ctx context.Context) error

	// CreateLists creates the given lists and returns their assigned ids,
	// positionally aligned with payloads.
	CreateLists(ctx context.Context, payloads []ListPayload) ([]int64, error)
	// UpdateList updates the name and description of a remote list.
	UpdateList(ctx context.Context, id int64, payload ListPayload) error
	// DeleteList deletes a remote list.
	DeleteList(ctx context.Context, id int64) error

	// CreateEntries adds entries to one remote list and returns their ids,
	// positionally aligned with payloads.
	CreateEntries(ctx context.Context, listID int64, payloads []EntryPayload) ([]int64, error)
	// DeleteEntry removes a single entry from a remote list.
	DeleteEntry(ctx context.Context, listID, entryID int64) error

	// ListsSince returns lists changed since the watermark. A zero time
	// requests the full set.
	ListsSince(ctx context.Context, since time.Time) ([]RemoteList, error)
	// EntriesSince returns entries changed since the watermark.
	EntriesSince(ctx context.Context, since time.Time) ([]RemoteEntry, error)
}
