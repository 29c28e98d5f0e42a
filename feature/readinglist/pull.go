package readinglist

import (
	"context"
	"time"

	"reader-sync/feature/readinglist/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pullRemoteChanges fetches remote changes since the watermark and applies
// them in one transaction. On a full sync the watermark is ignored and local
// records with a remote id but no remote counterpart are purged as orphans.
// The new watermark is the maximum remote `updated` timestamp observed.
func (e *Engine) pullRemoteChanges(ctx context.Context, full bool) error {
	since := time.Time{}
	if !full {
		var err error
		since, err = e.store.Watermark()
		if err != nil {
			return err
		}
	}

	remoteLists, err := e.client.ListsSince(ctx, since)
	if err != nil {
		return err
	}
	remoteEntries, err := e.client.EntriesSince(ctx, since)
	if err != nil {
		return err
	}

	var watermark time.Time
	err = e.store.Transaction(func(tx *gorm.DB) error {
		listMark, err := applyRemoteLists(tx, remoteLists, full)
		if err != nil {
			return err
		}
		entryMark, err := applyRemoteEntries(tx, remoteEntries, full)
		if err != nil {
			return err
		}

		watermark = listMark
		if entryMark.After(watermark) {
			watermark = entryMark
		}
		return nil
	})
	if err != nil {
		return err
	}

	if watermark.After(since) {
		if err := e.store.SetWatermark(watermark); err != nil {
			return err
		}
	}

	e.log.Debug("Remote changes applied",
		zap.Int("lists", len(remoteLists)),
		zap.Int("entries", len(remoteEntries)),
		zap.Bool("full", full),
	)
	return nil
}

// applyRemoteLists merges remote list records into the local store.
// Matching is three-way: by remote id first, then by canonical name, else
// insert. Remote-deleted records purge their local match. Locally dirty
// records keep their local field values (the next push wins); locally
// deleted records are left for the push path.
func applyRemoteLists(tx *gorm.DB, remote []RemoteList, full bool) (time.Time, error) {
	var locals []models.ReadingList
	if err := tx.Find(&locals).Error; err != nil {
		return time.Time{}, err
	}

	byRemoteID := make(map[int64]*models.ReadingList)
	byName := make(map[string]*models.ReadingList)
	var localDefault *models.ReadingList
	for i := range locals {
		l := &locals[i]
		if l.RemoteID != nil {
			byRemoteID[*l.RemoteID] = l
		}
		if !l.IsDeletedLocally {
			byName[l.CanonicalName] = l
			if l.IsDefault {
				localDefault = l
			}
		}
	}

	var watermark time.Time
	seen := make(map[int64]struct{}, len(remote))

	for _, r := range remote {
		if r.Updated.After(watermark) {
			watermark = r.Updated
		}
		seen[r.ID] = struct{}{}

		local := byRemoteID[r.ID]
		if local == nil {
			local = byName[models.CanonicalName(r.Name)]
		}
		// The remote default always pairs with the local default; the
		// single-default invariant would break on a second insert.
		if local == nil && r.IsDefault {
			local = localDefault
		}

		if r.Deleted {
			if local != nil {
				if err := purgeListTx(tx, local.ID); err != nil {
					return watermark, err
				}
			}
			continue
		}

		if local == nil {
			insert := models.ReadingList{
				RemoteID:        &r.ID,
				Name:            r.Name,
				CanonicalName:   models.CanonicalName(r.Name),
				ListDescription: r.Description,
				IsDefault:       r.IsDefault,
			}
			if err := tx.Create(&insert).Error; err != nil {
				return watermark, err
			}
			continue
		}

		if local.IsDeletedLocally {
			// Local deletion is pending; the push path will confirm it.
			continue
		}

		local.RemoteID = &r.ID
		if !local.IsUpdatedLocally {
			local.Name = r.Name
			local.CanonicalName = models.CanonicalName(r.Name)
			local.ListDescription = r.Description
		}
		if err := tx.Save(local).Error; err != nil {
			return watermark, err
		}
	}

	if full {
		// Local records that claim a remote id the server no longer reports
		// are orphans or duplicates; delete outright.
		for remoteID, local := range byRemoteID {
			if _, ok := seen[remoteID]; ok {
				continue
			}
			if err := purgeListTx(tx, local.ID); err != nil {
				return watermark, err
			}
		}
	}

	return watermark, nil
}

// applyRemoteEntries merges remote entry records into the local store.
// Matching is by remote entry id first, then by (list, article key).
func applyRemoteEntries(tx *gorm.DB, remote []RemoteEntry, full bool) (time.Time, error) {
	var lists []models.ReadingList
	if err := tx.Find(&lists).Error; err != nil {
		return time.Time{}, err
	}
	listByRemoteID := make(map[int64]*models.ReadingList)
	for i := range lists {
		if lists[i].RemoteID != nil {
			listByRemoteID[*lists[i].RemoteID] = &lists[i]
		}
	}

	var locals []models.ReadingListEntry
	if err := tx.Find(&locals).Error; err != nil {
		return time.Time{}, err
	}
	byRemoteID := make(map[int64]*models.ReadingListEntry)
	byListAndKey := make(map[uint]map[string]*models.ReadingListEntry)
	for i := range locals {
		en := &locals[i]
		if en.RemoteEntryID != nil {
			byRemoteID[*en.RemoteEntryID] = en
		}
		if !en.IsDeletedLocally {
			if byListAndKey[en.ListID] == nil {
				byListAndKey[en.ListID] = make(map[string]*models.ReadingListEntry)
			}
			byListAndKey[en.ListID][en.ArticleKey] = en
		}
	}

	var watermark time.Time
	seen := make(map[int64]struct{}, len(remote))
	touchedLists := make(map[uint]struct{})
	var touchedKeys []string

	for _, r := range remote {
		if r.Updated.After(watermark) {
			watermark = r.Updated
		}
		seen[r.ID] = struct{}{}

		list := listByRemoteID[r.ListID]
		if list == nil {
			// Entry for a list this device has not merged yet; the next full
			// sync reconciles it once the list exists.
			continue
		}

		key := models.ArticleKey(r.Project, r.Title)
		local := byRemoteID[r.ID]
		if local == nil {
			if m := byListAndKey[list.ID]; m != nil {
				local = m[key]
			}
		}

		if r.Deleted {
			if local != nil {
				if err := tx.Delete(&models.ReadingListEntry{}, local.ID).Error; err != nil {
					return watermark, err
				}
				touchedLists[list.ID] = struct{}{}
				touchedKeys = append(touchedKeys, local.ArticleKey)
			}
			continue
		}

		if local == nil {
			insert := models.ReadingListEntry{
				RemoteEntryID: &r.ID,
				ListID:        list.ID,
				ArticleKey:    key,
				DisplayTitle:  r.Title,
			}
			if err := tx.Create(&insert).Error; err != nil {
				return watermark, err
			}
			article := models.Article{Key: key, DisplayTitle: r.Title}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"display_title"}),
			}).Create(&article).Error; err != nil {
				return watermark, err
			}
			touchedLists[list.ID] = struct{}{}
			touchedKeys = append(touchedKeys, key)
			continue
		}

		if local.IsDeletedLocally {
			continue
		}
		if local.RemoteEntryID == nil {
			local.RemoteEntryID = &r.ID
			local.IsUpdatedLocally = false
			if err := tx.Save(local).Error; err != nil {
				return watermark, err
			}
		}
	}

	if full {
		for remoteID, local := range byRemoteID {
			if _, ok := seen[remoteID]; ok {
				continue
			}
			if err := tx.Delete(&models.ReadingListEntry{}, local.ID).Error; err != nil {
				return watermark, err
			}
			touchedLists[local.ListID] = struct{}{}
			touchedKeys = append(touchedKeys, local.ArticleKey)
		}
	}

	for listID := range touchedLists {
		if err := refreshEntryCount(tx, listID); err != nil {
			return watermark, err
		}
	}
	return watermark, recomputeArticles(tx, touchedKeys)
}
