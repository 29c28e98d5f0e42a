package readinglist

import (
	"errors"
	"fmt"
	"time"

	"reader-sync/feature/readinglist/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	syncStateKey = "sync-state"
	watermarkKey = "sync-watermark"

	// DefaultListName is the name of the implicit list that save-article
	// targets when no list is specified.
	DefaultListName = "Saved"
)

// ArticleRef identifies an article by project host and title.
type ArticleRef struct {
	Project string `json:"project"`
	Title   string `json:"title"`
}

// Store is the local-store adapter for reading lists. All mutation runs in
// transactions on the single database connection, which serializes writers.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the schema and guarantees the default list exists.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(
		&models.ReadingList{},
		&models.ReadingListEntry{},
		&models.Article{},
		&models.Setting{},
	); err != nil {
		return err
	}
	_, err := s.DefaultList()
	return err
}

// Transaction runs fn in a database transaction.
func (s *Store) Transaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// State reads the persisted sync state. A missing row means idle.
func (s *Store) State() (SyncState, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", syncStateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NeedsNothing, nil
	}
	if err != nil {
		return NeedsNothing, err
	}
	return SyncState(setting.IntValue), nil
}

// SetState persists the sync state as a single integer value.
func (s *Store) SetState(state SyncState) error {
	setting := models.Setting{Key: syncStateKey, IntValue: int64(state)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"int_value"}),
	}).Create(&setting).Error
}

// UpdateState applies fn to the persisted sync state in one transaction and
// returns the previous and resulting values. Concurrent writers see each
// other's flags instead of overwriting them.
func (s *Store) UpdateState(fn func(SyncState) SyncState) (SyncState, SyncState, error) {
	var prev, next SyncState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var setting models.Setting
		err := tx.First(&setting, "key = ?", syncStateKey).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		prev = SyncState(setting.IntValue)
		next = fn(prev)
		if next == prev {
			return nil
		}
		setting = models.Setting{Key: syncStateKey, IntValue: int64(next)}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"int_value"}),
		}).Create(&setting).Error
	})
	return prev, next, err
}

// Watermark reads the incremental-sync watermark. Zero means never synced.
func (s *Store) Watermark() (time.Time, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", watermarkKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if setting.IntValue == 0 {
		return time.Time{}, nil
	}
	return time.Unix(0, setting.IntValue).UTC(), nil
}

// SetWatermark persists the incremental-sync watermark.
func (s *Store) SetWatermark(t time.Time) error {
	var v int64
	if !t.IsZero() {
		v = t.UnixNano()
	}
	setting := models.Setting{Key: watermarkKey, IntValue: v}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"int_value"}),
	}).Create(&setting).Error
}

// Lists returns all non-deleted lists ordered by name, default list first.
func (s *Store) Lists() ([]models.ReadingList, error) {
	var lists []models.ReadingList
	err := s.db.
		Where("is_deleted_locally = ?", false).
		Order("is_default DESC, canonical_name ASC").
		Find(&lists).Error
	return lists, err
}

// ListByID returns a non-deleted list by local id.
func (s *Store) ListByID(id uint) (*models.ReadingList, error) {
	var list models.ReadingList
	err := s.db.First(&list, "id = ? AND is_deleted_locally = ?", id, false).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByName returns a non-deleted list by canonical-name match.
func (s *Store) ListByName(name string) (*models.ReadingList, error) {
	var list models.ReadingList
	err := s.db.First(&list, "canonical_name = ? AND is_deleted_locally = ?",
		models.CanonicalName(name), false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ListNotFoundError{Name: name}
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// DefaultList returns the default list, creating it if missing. Exactly one
// list carries the default flag; stray flags are cleared.
func (s *Store) DefaultList() (*models.ReadingList, error) {
	var list models.ReadingList
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var defaults []models.ReadingList
		if err := tx.Where("is_default = ? AND is_deleted_locally = ?", true, false).
			Order("id ASC").Find(&defaults).Error; err != nil {
			return err
		}

		if len(defaults) == 0 {
			list = models.ReadingList{
				Name:             DefaultListName,
				CanonicalName:    models.CanonicalName(DefaultListName),
				IsDefault:        true,
				IsUpdatedLocally: true,
			}
			return tx.Create(&list).Error
		}

		list = defaults[0]
		if len(defaults) > 1 {
			extra := make([]uint, 0, len(defaults)-1)
			for _, d := range defaults[1:] {
				extra = append(extra, d.ID)
			}
			return tx.Model(&models.ReadingList{}).
				Where("id IN ?", extra).
				Updates(map[string]any{"is_default": false, "is_updated_locally": true}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateList creates a new dirty list, rejecting canonical-name duplicates
// among non-deleted lists before any mutation.
func (s *Store) CreateList(name, description string) (*models.ReadingList, error) {
	canonical := models.CanonicalName(name)
	list := models.ReadingList{
		Name:             name,
		CanonicalName:    canonical,
		ListDescription:  description,
		IsUpdatedLocally: true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ReadingList{}).
			Where("canonical_name = ? AND is_deleted_locally = ?", canonical, false).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToCreateList, err)
		}
		if count > 0 {
			return &ListExistsError{Name: name}
		}
		if err := tx.Create(&list).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToCreateList, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateList renames a list and/or changes its description, marking it dirty.
func (s *Store) UpdateList(id uint, name, description string) (*models.ReadingList, error) {
	canonical := models.CanonicalName(name)
	var list models.ReadingList

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&list, "id = ? AND is_deleted_locally = ?", id, false).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToUpdateList, err)
		}

		var count int64
		if err := tx.Model(&models.ReadingList{}).
			Where("canonical_name = ? AND is_deleted_locally = ? AND id <> ?", canonical, false, id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToUpdateList, err)
		}
		if count > 0 {
			return &ListExistsError{Name: name}
		}

		list.Name = name
		list.CanonicalName = canonical
		list.ListDescription = description
		list.IsUpdatedLocally = true
		if err := tx.Save(&list).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToUpdateList, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteLists soft-deletes the given lists pending remote confirmation.
// The default list is never deletable.
func (s *Store) DeleteLists(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var lists []models.ReadingList
		if err := tx.Where("id IN ? AND is_deleted_locally = ?", ids, false).Find(&lists).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToDeleteList, err)
		}
		for _, l := range lists {
			if l.IsDefault {
				return ErrCannotDeleteDefaultList
			}
		}

		keys, err := entryKeysForLists(tx, ids)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToDeleteList, err)
		}

		if err := tx.Model(&models.ReadingListEntry{}).
			Where("list_id IN ? AND is_deleted_locally = ?", ids, false).
			Updates(map[string]any{"is_deleted_locally": true, "is_updated_locally": true}).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToDeleteList, err)
		}
		if err := tx.Model(&models.ReadingList{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"is_deleted_locally": true, "is_updated_locally": true, "entry_count": 0}).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToDeleteList, err)
		}

		return recomputeArticles(tx, keys)
	})
}

// Entries returns the non-deleted entries of a list, oldest first.
func (s *Store) Entries(listID uint) ([]models.ReadingListEntry, error) {
	var entries []models.ReadingListEntry
	err := s.db.
		Where("list_id = ? AND is_deleted_locally = ?", listID, false).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// AddArticles adds the given articles to a list inside one transaction:
// membership is deduplicated by article key, the list's entry count is
// refreshed, and each affected article's saved state is recomputed.
func (s *Store) AddArticles(listID uint, refs []ArticleRef) error {
	if len(refs) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var list models.ReadingList
		if err := tx.First(&list, "id = ? AND is_deleted_locally = ?", listID, false).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
		}

		existing := make(map[string]struct{})
		var current []models.ReadingListEntry
		if err := tx.Where("list_id = ? AND is_deleted_locally = ?", listID, false).
			Find(&current).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
		}
		for _, e := range current {
			existing[e.ArticleKey] = struct{}{}
		}

		var keys []string
		for _, ref := range refs {
			key := models.ArticleKey(ref.Project, ref.Title)
			if _, dup := existing[key]; dup {
				continue
			}
			existing[key] = struct{}{}
			keys = append(keys, key)

			entry := models.ReadingListEntry{
				ListID:           listID,
				ArticleKey:       key,
				DisplayTitle:     ref.Title,
				IsUpdatedLocally: true,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
			}

			article := models.Article{Key: key, DisplayTitle: ref.Title}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"display_title"}),
			}).Create(&article).Error; err != nil {
				return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
			}
		}

		if err := refreshEntryCount(tx, listID); err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
		}
		return recomputeArticles(tx, keys)
	})
}

// RemoveArticles soft-deletes the entries for the given article keys from a
// list, refreshes the count, and recomputes saved state.
func (s *Store) RemoveArticles(listID uint, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReadingListEntry{}).
			Where("list_id = ? AND article_key IN ? AND is_deleted_locally = ?", listID, keys, false).
			Updates(map[string]any{"is_deleted_locally": true, "is_updated_locally": true}).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToRemoveEntry, err)
		}
		if err := refreshEntryCount(tx, listID); err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToRemoveEntry, err)
		}
		return recomputeArticles(tx, keys)
	})
}

// SaveArticle adds an article to the default list.
func (s *Store) SaveArticle(ref ArticleRef) error {
	list, err := s.DefaultList()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnableToAddEntry, err)
	}
	return s.AddArticles(list.ID, []ArticleRef{ref})
}

// UnsaveArticle removes an article from every list it belongs to.
func (s *Store) UnsaveArticle(key string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entries []models.ReadingListEntry
		if err := tx.Where("article_key = ? AND is_deleted_locally = ?", key, false).
			Find(&entries).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToRemoveEntry, err)
		}

		lists := make(map[uint]struct{})
		for _, e := range entries {
			lists[e.ListID] = struct{}{}
		}

		if err := tx.Model(&models.ReadingListEntry{}).
			Where("article_key = ? AND is_deleted_locally = ?", key, false).
			Updates(map[string]any{"is_deleted_locally": true, "is_updated_locally": true}).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToRemoveEntry, err)
		}

		for listID := range lists {
			if err := refreshEntryCount(tx, listID); err != nil {
				return fmt.Errorf("%w: %w", ErrUnableToRemoveEntry, err)
			}
		}
		return recomputeArticles(tx, []string{key})
	})
}

// Article returns an article's saved-state view, or nil if unknown.
func (s *Store) Article(key string) (*models.Article, error) {
	var article models.Article
	err := s.db.First(&article, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// DirtyLists returns all lists with unpushed local changes.
func (s *Store) DirtyLists() ([]models.ReadingList, error) {
	var lists []models.ReadingList
	err := s.db.Where("is_updated_locally = ?", true).Order("id ASC").Find(&lists).Error
	return lists, err
}

// DirtyEntries returns all entries with unpushed local changes.
func (s *Store) DirtyEntries() ([]models.ReadingListEntry, error) {
	var entries []models.ReadingListEntry
	err := s.db.Where("is_updated_locally = ?", true).Order("id ASC").Find(&entries).Error
	return entries, err
}

// ResetToUnsynced strips remote ids from every list and entry and marks them
// dirty, returning the store to its never-synced state. The watermark is
// cleared so the next enable performs a full sync.
func (s *Store) ResetToUnsynced() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReadingList{}).Where("1 = 1").
			Updates(map[string]any{"remote_id": nil, "is_updated_locally": true}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReadingListEntry{}).Where("1 = 1").
			Updates(map[string]any{"remote_entry_id": nil, "is_updated_locally": true}).Error
	})
	if err != nil {
		return err
	}
	return s.SetWatermark(time.Time{})
}

// ClearLocalLists hard-deletes every list and entry and clears all saved
// state. The default list is recreated empty.
func (s *Store) ClearLocalLists() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ReadingListEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.ReadingList{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Article{}).Where("saved_at IS NOT NULL").
			Update("saved_at", nil).Error
	})
	if err != nil {
		return err
	}
	_, err = s.DefaultList()
	return err
}

// ClearLocalArticles removes every entry and clears all saved state while
// keeping the lists themselves.
func (s *Store) ClearLocalArticles() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ReadingListEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReadingList{}).Where("1 = 1").
			Update("entry_count", 0).Error; err != nil {
			return err
		}
		return tx.Model(&models.Article{}).Where("saved_at IS NOT NULL").
			Update("saved_at", nil).Error
	})
}

// entryKeysForLists collects the article keys of all non-deleted entries in
// the given lists.
func entryKeysForLists(tx *gorm.DB, listIDs []uint) ([]string, error) {
	var keys []string
	err := tx.Model(&models.ReadingListEntry{}).
		Where("list_id IN ? AND is_deleted_locally = ?", listIDs, false).
		Distinct().Pluck("article_key", &keys).Error
	return keys, err
}

// refreshEntryCount recomputes a list's cached entry count.
func refreshEntryCount(tx *gorm.DB, listID uint) error {
	var count int64
	if err := tx.Model(&models.ReadingListEntry{}).
		Where("list_id = ? AND is_deleted_locally = ?", listID, false).
		Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.ReadingList{}).Where("id = ?", listID).
		Update("entry_count", count).Error
}

// recomputeArticles restores the saved-state invariant for the given article
// keys: saved_at is non-null exactly when membership count is positive.
func recomputeArticles(tx *gorm.DB, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	now := time.Now().UTC()

	for _, key := range keys {
		var count int64
		if err := tx.Model(&models.ReadingListEntry{}).
			Joins("JOIN reading_lists ON reading_lists.id = reading_list_entries.list_id").
			Where("reading_list_entries.article_key = ?", key).
			Where("reading_list_entries.is_deleted_locally = ?", false).
			Where("reading_lists.is_deleted_locally = ?", false).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Model(&models.Article{}).
				Where("key = ? AND saved_at IS NULL", key).
				Update("saved_at", now).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.Article{}).
				Where("key = ?", key).
				Update("saved_at", nil).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
