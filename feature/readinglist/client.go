package readinglist

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"reader-sync/core/remote"
)

// httpClient implements RemoteClient against the JSON list service.
type httpClient struct {
	c *remote.Client
}

// NewHTTPClient creates a RemoteClient backed by the shared remote transport.
func NewHTTPClient(c *remote.Client) RemoteClient {
	return &httpClient{c: c}
}

func (h *httpClient) Setup(ctx context.Context) error {
	return h.c.Post(ctx, "/lists/setup", nil, nil)
}

func (h *httpClient) Teardown(ctx context.Context) error {
	return h.c.Post(ctx, "/lists/teardown", nil, nil)
}

func (h *httpClient) CreateLists(ctx context.Context, payloads []ListPayload) ([]int64, error) {
	req := struct {
		Lists []ListPayload `json:"lists"`
	}{Lists: payloads}

	var resp struct {
		IDs []int64 `json:"ids"`
	}
	if err := h.c.Post(ctx, "/lists/batch", req, &resp); err != nil {
		return nil, err
	}
	// The response contract is positional; a length mismatch would misassign
	// ids, so reject it here.
	if len(resp.IDs) != len(payloads) {
		return nil, fmt.Errorf("list batch create returned %d ids for %d lists", len(resp.IDs), len(payloads))
	}
	return resp.IDs, nil
}

func (h *httpClient) UpdateList(ctx context.Context, id int64, payload ListPayload) error {
	return h.c.Put(ctx, fmt.Sprintf("/lists/%d", id), payload, nil)
}

func (h *httpClient) DeleteList(ctx context.Context, id int64) error {
	return h.c.Delete(ctx, fmt.Sprintf("/lists/%d", id))
}

func (h *httpClient) CreateEntries(ctx context.Context, listID int64, payloads []EntryPayload) ([]int64, error) {
	req := struct {
		Entries []EntryPayload `json:"entries"`
	}{Entries: payloads}

	var resp struct {
		IDs []int64 `json:"ids"`
	}
	if err := h.c.Post(ctx, fmt.Sprintf("/lists/%d/entries/batch", listID), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) != len(payloads) {
		return nil, fmt.Errorf("entry batch create returned %d ids for %d entries", len(resp.IDs), len(payloads))
	}
	return resp.IDs, nil
}

func (h *httpClient) DeleteEntry(ctx context.Context, listID, entryID int64) error {
	return h.c.Delete(ctx, fmt.Sprintf("/lists/%d/entries/%d", listID, entryID))
}

func (h *httpClient) ListsSince(ctx context.Context, since time.Time) ([]RemoteList, error) {
	var resp struct {
		Lists []RemoteList `json:"lists"`
	}
	if err := h.c.Get(ctx, "/lists/changes"+sinceQuery(since), &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

func (h *httpClient) EntriesSince(ctx context.Context, since time.Time) ([]RemoteEntry, error) {
	var resp struct {
		Entries []RemoteEntry `json:"entries"`
	}
	if err := h.c.Get(ctx, "/lists/changes/entries"+sinceQuery(since), &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func sinceQuery(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
}
