package readinglist

import (
	"context"
	"sort"

	"reader-sync/core/diff"
	"reader-sync/feature/readinglist/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// listPush is one pending per-list remote call.
type listPush struct {
	list   models.ReadingList
	delete bool
}

// pushLocalLists reconciles dirty lists local-to-remote. Deletes and updates
// fan out in bounded batches; creations go through the positional batch-create
// call. A failed item stays dirty and is retried on the next cycle.
func (e *Engine) pushLocalLists(ctx context.Context) {
	lists, err := e.store.DirtyLists()
	if err != nil {
		e.log.Warn("Dirty list fetch failed", zap.Error(err))
		return
	}

	var pushes []listPush
	var creates []models.ReadingList
	for _, l := range lists {
		switch {
		case l.IsDeletedLocally && l.RemoteID == nil:
			// Never existed server-side; purge locally outright.
			if err := e.store.PurgeList(l.ID); err != nil {
				e.log.Warn("List purge failed", zap.Uint("list", l.ID), zap.Error(err))
			}
		case l.IsDeletedLocally:
			pushes = append(pushes, listPush{list: l, delete: true})
		case l.RemoteID == nil:
			creates = append(creates, l)
		default:
			pushes = append(pushes, listPush{list: l})
		}
	}

	for _, batch := range diff.Chunk(pushes, e.cfg.BatchLimit) {
		ok := make([]bool, len(batch))

		var g errgroup.Group
		g.SetLimit(e.cfg.BatchLimit)
		for i, p := range batch {
			g.Go(func() error {
				var err error
				if p.delete {
					err = e.client.DeleteList(ctx, *p.list.RemoteID)
				} else {
					err = e.client.UpdateList(ctx, *p.list.RemoteID, ListPayload{
						Name:        p.list.Name,
						Description: p.list.ListDescription,
					})
				}
				if err != nil {
					e.log.Warn("List push failed; retrying next cycle",
						zap.Uint("list", p.list.ID), zap.Bool("delete", p.delete), zap.Error(err))
					return nil
				}
				ok[i] = true
				return nil
			})
		}
		// Join: the whole batch completes before local state is touched and
		// the next batch starts.
		_ = g.Wait()

		for i, p := range batch {
			if !ok[i] {
				continue
			}
			if p.delete {
				if err := e.store.PurgeList(p.list.ID); err != nil {
					e.log.Warn("List purge failed", zap.Uint("list", p.list.ID), zap.Error(err))
				}
			} else {
				if err := e.store.ClearListDirty(p.list.ID, nil); err != nil {
					e.log.Warn("List dirty clear failed", zap.Uint("list", p.list.ID), zap.Error(err))
				}
			}
		}
	}

	for _, batch := range diff.Chunk(creates, e.cfg.BatchLimit) {
		payloads := make([]ListPayload, len(batch))
		for i, l := range batch {
			payloads[i] = ListPayload{Name: l.Name, Description: l.ListDescription}
		}

		ids, err := e.client.CreateLists(ctx, payloads)
		if err != nil {
			e.log.Warn("List batch create failed; retrying next cycle",
				zap.Int("count", len(batch)), zap.Error(err))
			continue
		}

		// Response ids are positionally aligned with the request payloads.
		for i, l := range batch {
			id := ids[i]
			if err := e.store.ClearListDirty(l.ID, &id); err != nil {
				e.log.Warn("List id assign failed", zap.Uint("list", l.ID), zap.Error(err))
			}
		}
	}
}

// entryPush is one pending per-entry remote delete.
type entryPush struct {
	entry        models.ReadingListEntry
	remoteListID int64
}

// pushLocalEntries reconciles dirty entries local-to-remote. Deletions fan
// out per entry in bounded batches, with local state applied after every
// batch. Creations are grouped per reading list (one call creates multiple
// entries for the same list), still capped by the batch limit. Entries whose
// list has no remote id yet stay dirty until the list itself is created.
func (e *Engine) pushLocalEntries(ctx context.Context) {
	entries, err := e.store.DirtyEntries()
	if err != nil {
		e.log.Warn("Dirty entry fetch failed", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	listIDs := make([]uint, 0, len(entries))
	seen := make(map[uint]struct{})
	for _, en := range entries {
		if _, ok := seen[en.ListID]; !ok {
			seen[en.ListID] = struct{}{}
			listIDs = append(listIDs, en.ListID)
		}
	}
	lists, err := e.store.ListsByIDs(listIDs)
	if err != nil {
		e.log.Warn("List fetch for entries failed", zap.Error(err))
		return
	}

	var deletes []entryPush
	createsByList := make(map[uint][]models.ReadingListEntry)
	for _, en := range entries {
		list, hasList := lists[en.ListID]
		switch {
		case en.IsDeletedLocally && en.RemoteEntryID == nil:
			// Never reached the server.
			if err := e.store.PurgeEntry(en.ID); err != nil {
				e.log.Warn("Entry purge failed", zap.Uint("entry", en.ID), zap.Error(err))
			}
		case en.IsDeletedLocally:
			if !hasList || list.RemoteID == nil {
				// The owning list is gone or unsynced; nothing to delete remotely.
				if err := e.store.PurgeEntry(en.ID); err != nil {
					e.log.Warn("Entry purge failed", zap.Uint("entry", en.ID), zap.Error(err))
				}
				continue
			}
			deletes = append(deletes, entryPush{entry: en, remoteListID: *list.RemoteID})
		case en.RemoteEntryID != nil:
			// Entries are immutable once created; a dirty entry that already
			// has a remote id has nothing left to push.
			if err := e.store.ClearEntryDirty(en.ID, nil); err != nil {
				e.log.Warn("Entry dirty clear failed", zap.Uint("entry", en.ID), zap.Error(err))
			}
		default:
			if !hasList || list.RemoteID == nil || list.IsDeletedLocally {
				// List not yet created remotely; the entry stays dirty and is
				// flushed once the list create succeeds.
				continue
			}
			createsByList[en.ListID] = append(createsByList[en.ListID], en)
		}
	}

	for _, batch := range diff.Chunk(deletes, e.cfg.BatchLimit) {
		ok := make([]bool, len(batch))

		var g errgroup.Group
		g.SetLimit(e.cfg.BatchLimit)
		for i, p := range batch {
			g.Go(func() error {
				if err := e.client.DeleteEntry(ctx, p.remoteListID, *p.entry.RemoteEntryID); err != nil {
					e.log.Warn("Entry delete failed; retrying next cycle",
						zap.Uint("entry", p.entry.ID), zap.Error(err))
					return nil
				}
				ok[i] = true
				return nil
			})
		}
		_ = g.Wait()

		// Apply after every batch so the working set stays bounded on large
		// reconciliations.
		for i, p := range batch {
			if !ok[i] {
				continue
			}
			if err := e.store.PurgeEntry(p.entry.ID); err != nil {
				e.log.Warn("Entry purge failed", zap.Uint("entry", p.entry.ID), zap.Error(err))
			}
		}
	}

	// Deterministic list order keeps request sequences reproducible.
	orderedLists := make([]uint, 0, len(createsByList))
	for id := range createsByList {
		orderedLists = append(orderedLists, id)
	}
	sort.Slice(orderedLists, func(i, j int) bool { return orderedLists[i] < orderedLists[j] })

	for _, listID := range orderedLists {
		remoteListID := *lists[listID].RemoteID
		for _, batch := range diff.Chunk(createsByList[listID], e.cfg.BatchLimit) {
			payloads := make([]EntryPayload, len(batch))
			for i, en := range batch {
				project, title := models.SplitArticleKey(en.ArticleKey)
				if title == "" {
					title = en.DisplayTitle
				}
				payloads[i] = EntryPayload{Project: project, Title: title}
			}

			ids, err := e.client.CreateEntries(ctx, remoteListID, payloads)
			if err != nil {
				e.log.Warn("Entry batch create failed; retrying next cycle",
					zap.Uint("list", listID), zap.Int("count", len(batch)), zap.Error(err))
				continue
			}

			for i, en := range batch {
				id := ids[i]
				if err := e.store.ClearEntryDirty(en.ID, &id); err != nil {
					e.log.Warn("Entry id assign failed", zap.Uint("entry", en.ID), zap.Error(err))
				}
			}
		}
	}
}
