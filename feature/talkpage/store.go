package talkpage

import (
	"errors"

	"reader-sync/feature/talkpage/models"

	"gorm.io/gorm"
)

// Store is the local-store adapter for talk pages.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the talk-page schema.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.TalkPage{},
		&models.TalkPageTopic{},
		&models.TalkPageReply{},
	)
}

// Page loads a talk page with its topics and replies in sort order, or nil
// if the page has never been fetched.
func (s *Store) Page(key string) (*models.TalkPage, error) {
	var page models.TalkPage
	err := s.db.
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort ASC, id ASC")
		}).
		Preload("Topics.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort ASC, id ASC")
		}).
		First(&page, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage persists a freshly built page graph in one pass.
func (s *Store) CreatePage(page *models.TalkPage) error {
	return s.db.Create(page).Error
}

// ApplyMerge persists a merged page graph: removed rows are deleted, new
// topics and replies are inserted, and surviving rows keep their ids with
// only the mutable columns written back.
func (s *Store) ApplyMerge(page *models.TalkPage, removedTopicIDs, removedReplyIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if len(removedTopicIDs) > 0 {
			if err := tx.Where("topic_id IN ?", removedTopicIDs).
				Delete(&models.TalkPageReply{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.TalkPageTopic{}, removedTopicIDs).Error; err != nil {
				return err
			}
		}
		if len(removedReplyIDs) > 0 {
			if err := tx.Delete(&models.TalkPageReply{}, removedReplyIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.TalkPage{}).Where("id = ?", page.ID).
			Updates(map[string]any{
				"revision_id":   page.RevisionID,
				"display_title": page.DisplayTitle,
			}).Error; err != nil {
			return err
		}

		for i := range page.Topics {
			topic := &page.Topics[i]
			topic.PageID = page.ID

			if topic.ID == 0 {
				if err := tx.Create(topic).Error; err != nil {
					return err
				}
				continue
			}

			if err := tx.Model(&models.TalkPageTopic{}).Where("id = ?", topic.ID).
				Updates(map[string]any{
					"sort":        topic.Sort,
					"replies_sha": topic.RepliesSha,
				}).Error; err != nil {
				return err
			}

			for j := range topic.Replies {
				reply := &topic.Replies[j]
				reply.TopicID = topic.ID

				if reply.ID == 0 {
					if err := tx.Create(reply).Error; err != nil {
						return err
					}
					continue
				}
				if err := tx.Model(&models.TalkPageReply{}).Where("id = ?", reply.ID).
					Update("sort", reply.Sort).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
