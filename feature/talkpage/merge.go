package talkpage

import (
	"errors"
	"fmt"
	"sort"

	"reader-sync/core/diff"
	"reader-sync/feature/talkpage/models"
)

// hashedReply is a remote reply annotated with its content hash.
type hashedReply struct {
	RemoteReply
	sha string
}

// hashedTopic is a remote topic annotated with its own hash and the digest
// of its reply subtree.
type hashedTopic struct {
	RemoteTopic
	sha        string
	repliesSha string
	replies    []hashedReply
}

// hashTopics computes merge keys for every node of a snapshot.
func hashTopics(topics []RemoteTopic) []hashedTopic {
	out := make([]hashedTopic, 0, len(topics))
	for _, t := range topics {
		ht := hashedTopic{
			RemoteTopic: t,
			sha:         TopicSha(t.Title, t.SectionIndex),
		}
		shas := make([]string, 0, len(t.Replies))
		for _, r := range t.Replies {
			hr := hashedReply{RemoteReply: r, sha: ReplySha(r.Text, r.Depth)}
			ht.replies = append(ht.replies, hr)
			shas = append(shas, hr.sha)
		}
		ht.repliesSha = RepliesSha(shas)
		out = append(out, ht)
	}
	return out
}

// MergeSnapshot folds a fetched snapshot into the local page graph in
// memory. Topics and replies present on both sides keep their local row
// identity; only sort order moves on unchanged nodes, and a topic whose
// stored replies digest matches the snapshot skips reply-level diffing
// entirely. Removed row ids are returned for the store to delete.
//
// Two nodes sharing a content hash on either side make the common-set
// pairing ambiguous; the merge fails with an AmbiguousHashError instead of
// guessing.
func MergeSnapshot(page *models.TalkPage, snap *Snapshot) (removedTopicIDs, removedReplyIDs []uint, err error) {
	remote := hashTopics(snap.Topics)

	localByHash, err := indexOrAmbiguous("topic", page.Topics, func(t models.TalkPageTopic) string {
		return t.TextSha
	})
	if err != nil {
		return nil, nil, err
	}
	remoteByHash, err := indexOrAmbiguous("topic", remote, func(t hashedTopic) string {
		return t.sha
	})
	if err != nil {
		return nil, nil, err
	}

	delta := diff.Keys(localByHash, remoteByHash)

	for _, sha := range delta.OnlyLocal {
		removedTopicIDs = append(removedTopicIDs, localByHash[sha].ID)
	}

	next := make([]models.TalkPageTopic, 0, len(remote))
	for _, sha := range delta.Common {
		local := localByHash[sha]
		r := remoteByHash[sha]
		local.Sort = r.Sort

		if local.RepliesSha != r.repliesSha {
			removed, err := mergeReplies(&local, r)
			if err != nil {
				return nil, nil, fmt.Errorf("topic %q: %w", local.Title, err)
			}
			removedReplyIDs = append(removedReplyIDs, removed...)
			local.RepliesSha = r.repliesSha
		}
		next = append(next, local)
	}

	for _, sha := range delta.OnlyRemote {
		next = append(next, newTopic(page.ID, remoteByHash[sha]))
	}

	sort.SliceStable(next, func(i, j int) bool { return next[i].Sort < next[j].Sort })

	page.Topics = next
	page.RevisionID = snap.RevisionID
	return removedTopicIDs, removedReplyIDs, nil
}

// mergeReplies runs the identical delete/common-update/insert pass one level
// down, matching replies by their own content hash. Common replies only move
// in sort order; reply text and depth are immutable once created.
func mergeReplies(topic *models.TalkPageTopic, r hashedTopic) ([]uint, error) {
	localByHash, err := indexOrAmbiguous("reply", topic.Replies, func(rp models.TalkPageReply) string {
		return rp.Sha
	})
	if err != nil {
		return nil, err
	}
	remoteByHash, err := indexOrAmbiguous("reply", r.replies, func(rp hashedReply) string {
		return rp.sha
	})
	if err != nil {
		return nil, err
	}

	delta := diff.Keys(localByHash, remoteByHash)

	var removed []uint
	for _, sha := range delta.OnlyLocal {
		removed = append(removed, localByHash[sha].ID)
	}

	next := make([]models.TalkPageReply, 0, len(r.replies))
	for _, sha := range delta.Common {
		local := localByHash[sha]
		local.Sort = remoteByHash[sha].Sort
		next = append(next, local)
	}
	for _, sha := range delta.OnlyRemote {
		rr := remoteByHash[sha]
		next = append(next, models.TalkPageReply{
			TopicID: topic.ID,
			Sha:     rr.sha,
			Text:    rr.Text,
			Depth:   rr.Depth,
			Sort:    rr.Sort,
		})
	}

	sort.SliceStable(next, func(i, j int) bool { return next[i].Sort < next[j].Sort })
	topic.Replies = next
	return removed, nil
}

// NewPageFromSnapshot builds the full local graph for a page seen for the
// first time. No merge is needed, but the same ambiguity rule applies as on
// merge: a snapshot carrying two same-hash nodes is rejected here too, since
// storing it would make every later merge of the page fail.
func NewPageFromSnapshot(key, languageCode, title string, snap *Snapshot) (*models.TalkPage, error) {
	hashed := hashTopics(snap.Topics)
	if _, err := indexOrAmbiguous("topic", hashed, func(t hashedTopic) string {
		return t.sha
	}); err != nil {
		return nil, err
	}
	for _, t := range hashed {
		if _, err := indexOrAmbiguous("reply", t.replies, func(r hashedReply) string {
			return r.sha
		}); err != nil {
			return nil, fmt.Errorf("topic %q: %w", t.Title, err)
		}
	}

	page := &models.TalkPage{
		Key:          key,
		RevisionID:   snap.RevisionID,
		LanguageCode: languageCode,
		DisplayTitle: title,
	}
	for _, t := range hashed {
		page.Topics = append(page.Topics, newTopic(0, t))
	}
	sort.SliceStable(page.Topics, func(i, j int) bool {
		return page.Topics[i].Sort < page.Topics[j].Sort
	})
	return page, nil
}

func newTopic(pageID uint, t hashedTopic) models.TalkPageTopic {
	topic := models.TalkPageTopic{
		PageID:       pageID,
		Title:        t.Title,
		SectionIndex: t.SectionIndex,
		Sort:         t.Sort,
		TextSha:      t.sha,
		RepliesSha:   t.repliesSha,
	}
	for _, r := range t.replies {
		topic.Replies = append(topic.Replies, models.TalkPageReply{
			Sha:   r.sha,
			Text:  r.Text,
			Depth: r.Depth,
			Sort:  r.Sort,
		})
	}
	sort.SliceStable(topic.Replies, func(i, j int) bool {
		return topic.Replies[i].Sort < topic.Replies[j].Sort
	})
	return topic
}

// indexOrAmbiguous builds a hash index, translating a duplicate key into the
// domain error.
func indexOrAmbiguous[T any](level string, items []T, key func(T) string) (map[string]T, error) {
	idx, err := diff.Index(items, key)
	if err != nil {
		var dup *diff.DuplicateKeyError
		if errors.As(err, &dup) {
			return nil, &AmbiguousHashError{Level: level, Sha: dup.Key}
		}
		return nil, err
	}
	return idx, nil
}
