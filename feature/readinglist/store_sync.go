package readinglist

import (
	"reader-sync/feature/readinglist/models"

	"gorm.io/gorm"
)

// Helpers the sync engine uses to apply reconciliation outcomes. These run on
// the same designated store context as every other mutation.

// ListsByIDs returns the given lists regardless of deletion state.
func (s *Store) ListsByIDs(ids []uint) (map[uint]models.ReadingList, error) {
	out := make(map[uint]models.ReadingList, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var lists []models.ReadingList
	if err := s.db.Where("id IN ?", ids).Find(&lists).Error; err != nil {
		return nil, err
	}
	for _, l := range lists {
		out[l.ID] = l
	}
	return out, nil
}

// PurgeList hard-deletes a list and its entries once the remote delete has
// been confirmed (or was never needed).
func (s *Store) PurgeList(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return purgeListTx(tx, id)
	})
}

// ClearListDirty marks a list as synced, assigning the remote id when the
// list was just created server-side.
func (s *Store) ClearListDirty(id uint, remoteID *int64) error {
	updates := map[string]any{"is_updated_locally": false}
	if remoteID != nil {
		updates["remote_id"] = *remoteID
	}
	return s.db.Model(&models.ReadingList{}).Where("id = ?", id).Updates(updates).Error
}

// PurgeEntry hard-deletes a single entry.
func (s *Store) PurgeEntry(id uint) error {
	return s.db.Delete(&models.ReadingListEntry{}, id).Error
}

// ClearEntryDirty marks an entry as synced, assigning the remote entry id
// when it was just created server-side.
func (s *Store) ClearEntryDirty(id uint, remoteEntryID *int64) error {
	updates := map[string]any{"is_updated_locally": false}
	if remoteEntryID != nil {
		updates["remote_entry_id"] = *remoteEntryID
	}
	return s.db.Model(&models.ReadingListEntry{}).Where("id = ?", id).Updates(updates).Error
}

// purgeListTx removes a list and its entries inside an existing transaction
// and restores the saved-state invariant for the affected articles.
func purgeListTx(tx *gorm.DB, id uint) error {
	keys, err := entryKeysForLists(tx, []uint{id})
	if err != nil {
		return err
	}
	if err := tx.Where("list_id = ?", id).Delete(&models.ReadingListEntry{}).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.ReadingList{}, id).Error; err != nil {
		return err
	}
	return recomputeArticles(tx, keys)
}
