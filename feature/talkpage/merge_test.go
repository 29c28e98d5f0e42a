package talkpage

import (
	"errors"
	"testing"

	"reader-sync/feature/talkpage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localPage(topics ...models.TalkPageTopic) *models.TalkPage {
	return &models.TalkPage{ID: 1, Key: "en.wikipedia.org/en/Talk:Rain", RevisionID: 5, Topics: topics}
}

func localTopic(id uint, title string, section, sortOrder int, replies ...models.TalkPageReply) models.TalkPageTopic {
	shas := make([]string, len(replies))
	for i, r := range replies {
		shas[i] = r.Sha
	}
	return models.TalkPageTopic{
		ID:           id,
		PageID:       1,
		Title:        title,
		SectionIndex: section,
		Sort:         sortOrder,
		TextSha:      TopicSha(title, section),
		RepliesSha:   RepliesSha(shas),
		Replies:      replies,
	}
}

func localReply(id uint, text string, depth int16, sortOrder int) models.TalkPageReply {
	return models.TalkPageReply{ID: id, Sha: ReplySha(text, depth), Text: text, Depth: depth, Sort: sortOrder}
}

func TestMergeAppendsNewReplyPreservingIdentity(t *testing.T) {
	page := localPage(
		localTopic(11, "Weather", 1, 0, localReply(101, "first", 0, 0)),
	)
	snap := &Snapshot{
		RevisionID: 6,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{
				{Text: "first", Depth: 0, Sort: 0},
				{Text: "second", Depth: 1, Sort: 1},
			},
		}},
	}

	removedTopics, removedReplies, err := MergeSnapshot(page, snap)
	require.NoError(t, err)
	assert.Empty(t, removedTopics)
	assert.Empty(t, removedReplies)

	assert.EqualValues(t, 6, page.RevisionID)
	require.Len(t, page.Topics, 1)

	topic := page.Topics[0]
	// The unchanged topic keeps its local row.
	assert.EqualValues(t, 11, topic.ID)
	require.Len(t, topic.Replies, 2)

	// The existing reply is untouched; the new one has no row yet.
	assert.EqualValues(t, 101, topic.Replies[0].ID)
	assert.Equal(t, "first", topic.Replies[0].Text)
	assert.Zero(t, topic.Replies[1].ID)
	assert.Equal(t, "second", topic.Replies[1].Text)
	assert.EqualValues(t, 1, topic.Replies[1].Depth)

	// The subtree digest now covers both replies.
	assert.Equal(t, RepliesSha([]string{topic.Replies[0].Sha, topic.Replies[1].Sha}), topic.RepliesSha)
}

func TestMergeDeletesVanishedNodes(t *testing.T) {
	page := localPage(
		localTopic(11, "Weather", 1, 0, localReply(101, "keep", 0, 0), localReply(102, "drop", 0, 1)),
		localTopic(12, "Archive", 2, 1),
	)
	snap := &Snapshot{
		RevisionID: 7,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{{Text: "keep", Depth: 0, Sort: 0}},
		}},
	}

	removedTopics, removedReplies, err := MergeSnapshot(page, snap)
	require.NoError(t, err)
	assert.Equal(t, []uint{12}, removedTopics)
	assert.Equal(t, []uint{102}, removedReplies)

	require.Len(t, page.Topics, 1)
	require.Len(t, page.Topics[0].Replies, 1)
	assert.EqualValues(t, 101, page.Topics[0].Replies[0].ID)
}

func TestMergeInsertsNewTopicWithAllReplies(t *testing.T) {
	page := localPage(localTopic(11, "Weather", 1, 0))
	snap := &Snapshot{
		RevisionID: 8,
		Topics: []RemoteTopic{
			{Title: "Weather", SectionIndex: 1, Sort: 0},
			{Title: "Sources", SectionIndex: 2, Sort: 1, Replies: []RemoteReply{
				{Text: "citation needed", Depth: 0, Sort: 0},
				{Text: "added one", Depth: 1, Sort: 1},
			}},
		},
	}

	_, _, err := MergeSnapshot(page, snap)
	require.NoError(t, err)
	require.Len(t, page.Topics, 2)

	fresh := page.Topics[1]
	assert.Zero(t, fresh.ID)
	assert.Equal(t, "Sources", fresh.Title)
	assert.Len(t, fresh.Replies, 2)
	assert.Equal(t, TopicSha("Sources", 2), fresh.TextSha)
}

func TestMergeReordersCommonTopicsBySort(t *testing.T) {
	page := localPage(
		localTopic(11, "First", 1, 0),
		localTopic(12, "Second", 2, 1),
	)
	snap := &Snapshot{
		RevisionID: 9,
		Topics: []RemoteTopic{
			{Title: "Second", SectionIndex: 2, Sort: 0},
			{Title: "First", SectionIndex: 1, Sort: 1},
		},
	}

	_, _, err := MergeSnapshot(page, snap)
	require.NoError(t, err)
	require.Len(t, page.Topics, 2)
	assert.EqualValues(t, 12, page.Topics[0].ID)
	assert.EqualValues(t, 11, page.Topics[1].ID)
}

func TestMergeSkipsReplyDiffWhenSubtreeUnchanged(t *testing.T) {
	// The stored digest matches the snapshot, so reply-level diffing never
	// runs. The deliberately inconsistent empty reply slice stays empty,
	// proving the short-circuit.
	replySha := ReplySha("only", 0)
	topic := localTopic(11, "Weather", 1, 0)
	topic.RepliesSha = RepliesSha([]string{replySha})
	page := localPage(topic)

	snap := &Snapshot{
		RevisionID: 10,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 3,
			Replies: []RemoteReply{{Text: "only", Depth: 0, Sort: 0}},
		}},
	}

	_, _, err := MergeSnapshot(page, snap)
	require.NoError(t, err)
	require.Len(t, page.Topics, 1)
	assert.Empty(t, page.Topics[0].Replies)
	assert.Equal(t, 3, page.Topics[0].Sort)
}

func TestMergeRejectsDuplicateTopicHash(t *testing.T) {
	page := localPage()
	snap := &Snapshot{
		RevisionID: 11,
		Topics: []RemoteTopic{
			{Title: "Twin", SectionIndex: 1, Sort: 0},
			{Title: "Twin", SectionIndex: 1, Sort: 1},
		},
	}

	_, _, err := MergeSnapshot(page, snap)
	var ambiguous *AmbiguousHashError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "topic", ambiguous.Level)
	assert.Equal(t, TopicSha("Twin", 1), ambiguous.Sha)
}

func TestMergeRejectsDuplicateReplyHash(t *testing.T) {
	page := localPage(localTopic(11, "Weather", 1, 0, localReply(101, "old", 0, 0)))
	snap := &Snapshot{
		RevisionID: 12,
		Topics: []RemoteTopic{{
			Title: "Weather", SectionIndex: 1, Sort: 0,
			Replies: []RemoteReply{
				{Text: "same words", Depth: 0, Sort: 0},
				{Text: "same words", Depth: 0, Sort: 1},
			},
		}},
	}

	_, _, err := MergeSnapshot(page, snap)
	var ambiguous *AmbiguousHashError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "reply", ambiguous.Level)
	assert.True(t, errors.As(err, &ambiguous))
}

func TestNewPageFromSnapshotBuildsFullGraph(t *testing.T) {
	snap := &Snapshot{
		RevisionID: 3,
		Topics: []RemoteTopic{
			{Title: "B", SectionIndex: 2, Sort: 1, Replies: []RemoteReply{{Text: "r", Depth: 0, Sort: 0}}},
			{Title: "A", SectionIndex: 1, Sort: 0},
		},
	}

	page, err := NewPageFromSnapshot("en.wikipedia.org/en/Talk:Rain", "en", "Talk:Rain", snap)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.RevisionID)
	require.Len(t, page.Topics, 2)
	assert.Equal(t, "A", page.Topics[0].Title)
	assert.Equal(t, "B", page.Topics[1].Title)
	require.Len(t, page.Topics[1].Replies, 1)
	assert.Equal(t, ReplySha("r", 0), page.Topics[1].Replies[0].Sha)
	assert.Equal(t, RepliesSha([]string{ReplySha("r", 0)}), page.Topics[1].RepliesSha)
}

func TestNewPageFromSnapshotRejectsAmbiguousHashes(t *testing.T) {
	// Storing a snapshot with two same-hash topics would poison the page:
	// every later merge would fail on the duplicate. Reject it up front.
	snap := &Snapshot{
		RevisionID: 3,
		Topics: []RemoteTopic{
			{Title: "Same", SectionIndex: 1, Sort: 0},
			{Title: "Same", SectionIndex: 1, Sort: 1},
		},
	}
	_, err := NewPageFromSnapshot("en.wikipedia.org/en/Talk:Rain", "en", "Talk:Rain", snap)
	var ambiguous *AmbiguousHashError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "topic", ambiguous.Level)

	snap = &Snapshot{
		RevisionID: 3,
		Topics: []RemoteTopic{
			{Title: "Fine", SectionIndex: 1, Sort: 0, Replies: []RemoteReply{
				{Text: "echo", Depth: 1, Sort: 0},
				{Text: "echo", Depth: 1, Sort: 1},
			}},
		},
	}
	_, err = NewPageFromSnapshot("en.wikipedia.org/en/Talk:Rain", "en", "Talk:Rain", snap)
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "reply", ambiguous.Level)
}
