package talkpage

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClient struct {
	snapshot *Snapshot
	err      error
	calls    int
}

func (f *fakeClient) FetchTalkPage(context.Context, string, string, string, int64) (*Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func newTestController(t *testing.T) (*Controller, *Store, *fakeClient) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewStore(db)
	require.NoError(t, store.AutoMigrate())

	client := &fakeClient{}
	return NewController(store, client, zap.NewNop()), store, client
}

func TestFetchCreatesPageOnFirstCall(t *testing.T) {
	controller, store, client := newTestController(t)
	client.snapshot = &Snapshot{
		RevisionID: 5,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{{Text: "first", Depth: 0, Sort: 0}},
		}},
	}

	page, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.EqualValues(t, 5, page.RevisionID)
	require.Len(t, page.Topics, 1)
	require.Len(t, page.Topics[0].Replies, 1)

	// Everything landed in the store.
	stored, err := store.Page(page.Key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Topics, 1)
	assert.Equal(t, TopicSha("Weather", 1), stored.Topics[0].TextSha)
}

func TestFetchSameRevisionSkipsNetwork(t *testing.T) {
	controller, _, client := newTestController(t)
	client.snapshot = &Snapshot{RevisionID: 5, Topics: []RemoteTopic{
		{Title: "Weather", SectionIndex: 1, Sort: 0},
	}}

	first, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	// Same revision again: served locally, identical stored row.
	second, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RevisionID, second.RevisionID)
}

func TestFetchNewRevisionMergesAndPersists(t *testing.T) {
	controller, store, client := newTestController(t)
	client.snapshot = &Snapshot{
		RevisionID: 5,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{{Text: "first", Depth: 0, Sort: 0}},
		}},
	}

	page, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.NoError(t, err)
	topicID := page.Topics[0].ID
	replyID := page.Topics[0].Replies[0].ID

	client.snapshot = &Snapshot{
		RevisionID: 6,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{
				{Text: "first", Depth: 0, Sort: 0},
				{Text: "second", Depth: 1, Sort: 1},
			},
		}},
	}

	merged, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 6)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.EqualValues(t, 6, merged.RevisionID)

	stored, err := store.Page(merged.Key)
	require.NoError(t, err)
	require.Len(t, stored.Topics, 1)
	// Surviving rows kept their ids across the merge.
	assert.Equal(t, topicID, stored.Topics[0].ID)
	require.Len(t, stored.Topics[0].Replies, 2)
	assert.Equal(t, replyID, stored.Topics[0].Replies[0].ID)
	assert.Equal(t, "second", stored.Topics[0].Replies[1].Text)
}

func TestFetchNewRevisionDeletesVanishedRows(t *testing.T) {
	controller, store, client := newTestController(t)
	client.snapshot = &Snapshot{
		RevisionID: 5,
		Topics: []RemoteTopic{
			{Title: "Weather", SectionIndex: 1, Sort: 0, Replies: []RemoteReply{
				{Text: "keep", Depth: 0, Sort: 0},
				{Text: "drop", Depth: 0, Sort: 1},
			}},
			{Title: "Archived", SectionIndex: 2, Sort: 1},
		},
	}

	page, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.NoError(t, err)
	require.Len(t, page.Topics, 2)

	client.snapshot = &Snapshot{
		RevisionID: 6,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{{Text: "keep", Depth: 0, Sort: 0}},
		}},
	}

	_, err = controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 6)
	require.NoError(t, err)

	stored, err := store.Page(page.Key)
	require.NoError(t, err)
	require.Len(t, stored.Topics, 1)
	assert.Equal(t, "Weather", stored.Topics[0].Title)
	require.Len(t, stored.Topics[0].Replies, 1)
	assert.Equal(t, "keep", stored.Topics[0].Replies[0].Text)
}

func TestFetchUnknownPageNetworkFailure(t *testing.T) {
	controller, store, client := newTestController(t)
	client.err = assert.AnError

	_, err := controller.FetchTalkPage(context.Background(), "en.wikipedia.org", "en", "Talk:Rain", 5)
	require.Error(t, err)

	stored, err := store.Page("en.wikipedia.org/en/Talk:Rain")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
