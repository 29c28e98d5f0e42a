package readinglist

import (
	"reader-sync/feature/readinglist/models"

	"go.uber.org/zap"
)

// Service exposes the reading-list operations consumed by UI collaborators.
// Every mutation applies its local effect synchronously (typed errors for
// precondition violations, nothing persisted on failure) and then triggers a
// debounced sync cycle for the network follow-through.
type Service struct {
	store  *Store
	engine *Engine
	logger *zap.Logger
}

// NewService creates a reading-list service.
func NewService(store *Store, engine *Engine, logger *zap.Logger) *Service {
	return &Service{store: store, engine: engine, logger: logger}
}

// Start begins periodic syncing.
func (s *Service) Start() { s.engine.Start() }

// Stop halts periodic syncing, letting an in-flight cycle finish.
func (s *Service) Stop() { s.engine.Stop() }

// Lists returns all non-deleted reading lists.
func (s *Service) Lists() ([]models.ReadingList, error) {
	return s.store.Lists()
}

// Entries returns the entries of a list.
func (s *Service) Entries(listID uint) ([]models.ReadingListEntry, error) {
	return s.store.Entries(listID)
}

// CreateReadingList creates a list, rejecting duplicate names synchronously.
func (s *Service) CreateReadingList(name, description string) (*models.ReadingList, error) {
	list, err := s.store.CreateList(name, description)
	if err != nil {
		return nil, err
	}
	s.engine.Trigger()
	return list, nil
}

// UpdateReadingList renames a list and/or changes its description.
func (s *Service) UpdateReadingList(id uint, name, description string) (*models.ReadingList, error) {
	list, err := s.store.UpdateList(id, name, description)
	if err != nil {
		return nil, err
	}
	s.engine.Trigger()
	return list, nil
}

// DeleteReadingLists soft-deletes lists pending remote confirmation.
func (s *Service) DeleteReadingLists(ids []uint) error {
	if err := s.store.DeleteLists(ids); err != nil {
		return err
	}
	s.engine.Trigger()
	return nil
}

// AddArticlesToList adds articles to a list, deduplicated by article key.
func (s *Service) AddArticlesToList(listID uint, refs []ArticleRef) error {
	if err := s.store.AddArticles(listID, refs); err != nil {
		return err
	}
	s.engine.Trigger()
	return nil
}

// RemoveArticlesFromList removes articles from a list by key.
func (s *Service) RemoveArticlesFromList(listID uint, keys []string) error {
	if err := s.store.RemoveArticles(listID, keys); err != nil {
		return err
	}
	s.engine.Trigger()
	return nil
}

// SaveArticle adds an article to the default list.
func (s *Service) SaveArticle(ref ArticleRef) error {
	if err := s.store.SaveArticle(ref); err != nil {
		return err
	}
	s.engine.Trigger()
	return nil
}

// UnsaveArticle removes an article from every list.
func (s *Service) UnsaveArticle(key string) error {
	if err := s.store.UnsaveArticle(key); err != nil {
		return err
	}
	s.engine.Trigger()
	return nil
}

// Article returns the saved-state view of an article, or nil if unknown.
func (s *Service) Article(key string) (*models.Article, error) {
	return s.store.Article(key)
}

// SetSyncEnabled turns sync on or off, with optional destructive resets.
func (s *Service) SetSyncEnabled(enabled, deleteLocalLists, deleteRemoteLists bool) error {
	return s.engine.SetSyncEnabled(enabled, deleteLocalLists, deleteRemoteLists)
}

// SyncState returns the current persisted sync state.
func (s *Service) SyncState() (SyncState, error) {
	return s.store.State()
}
