package talkpage

import (
	"context"
	"fmt"
	"net/url"

	"reader-sync/core/remote"
)

// RemoteReply is one comment in a fetched discussion thread.
type RemoteReply struct {
	Text  string `json:"text"`
	Depth int16  `json:"depth"`
	Sort  int    `json:"sort"`
}

// RemoteTopic is one discussion thread in a fetched snapshot.
type RemoteTopic struct {
	Title        string        `json:"title"`
	SectionIndex int           `json:"section_index"`
	Sort         int           `json:"sort"`
	Replies      []RemoteReply `json:"replies"`
}

// Snapshot is a full fetch of a talk page at one revision.
type Snapshot struct {
	RevisionID int64         `json:"revision_id"`
	Topics     []RemoteTopic `json:"topics"`
}

// Client fetches talk-page snapshots from the remote service.
type Client interface {
	// FetchTalkPage fetches the discussion page for an article. The revision
	// id is a hint for the service's caches, not a conditional fetch; the
	// revision gate lives in the controller.
	FetchTalkPage(ctx context.Context, host, languageCode, title string, revisionID int64) (*Snapshot, error)
}

type httpClient struct {
	c *remote.Client
}

// NewHTTPClient creates a Client backed by the shared remote transport.
func NewHTTPClient(c *remote.Client) Client {
	return &httpClient{c: c}
}

func (h *httpClient) FetchTalkPage(ctx context.Context, host, languageCode, title string, revisionID int64) (*Snapshot, error) {
	q := url.Values{}
	q.Set("host", host)
	q.Set("lang", languageCode)
	q.Set("title", title)
	if revisionID > 0 {
		q.Set("revision", fmt.Sprintf("%d", revisionID))
	}

	var snap Snapshot
	if err := h.c.Get(ctx, "/talkpages?"+q.Encode(), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
