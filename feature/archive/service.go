package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"reader-sync/core/storage"
	"reader-sync/feature/readinglist"
	"reader-sync/feature/readinglist/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ListSnapshot is one reading list with its entries as written to an
// archive object.
type ListSnapshot struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	IsDefault   bool                      `json:"default"`
	Entries     []models.ReadingListEntry `json:"entries"`
}

// Archive is the full exported snapshot.
type Archive struct {
	ExportedAt time.Time      `json:"exported_at"`
	Lists      []ListSnapshot `json:"lists"`
}

// Service exports reading-list snapshots to object storage and reads them
// back.
type Service struct {
	store   *readinglist.Store
	storage storage.Client
	bucket  string
	log     *zap.Logger

	// now is swapped in tests for deterministic object names.
	now func() time.Time
}

// NewService creates the archive service.
func NewService(store *readinglist.Store, client storage.Client, bucket string, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		storage: client,
		bucket:  bucket,
		log:     log,
		now:     time.Now,
	}
}

// Export writes a timestamped JSON snapshot of all lists and their entries
// to the archive bucket and returns the object name.
func (s *Service) Export(ctx context.Context) (string, error) {
	lists, err := s.store.Lists()
	if err != nil {
		return "", fmt.Errorf("load lists: %w", err)
	}

	snapshot := Archive{ExportedAt: s.now().UTC()}
	for _, l := range lists {
		entries, err := s.store.Entries(l.ID)
		if err != nil {
			return "", fmt.Errorf("load entries for %q: %w", l.Name, err)
		}
		snapshot.Lists = append(snapshot.Lists, ListSnapshot{
			Name:        l.Name,
			Description: l.ListDescription,
			IsDefault:   l.IsDefault,
			Entries:     entries,
		})
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("lists-%s.json", snapshot.ExportedAt.Format("2006-01-02T15-04-05Z"))
	_, err = s.storage.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	s.log.Info("Archive exported",
		zap.String("object", objectName),
		zap.Int("lists", len(snapshot.Lists)),
		zap.Int("bytes", len(payload)),
	)
	return objectName, nil
}

// List returns the names of all stored archive objects, newest name last.
func (s *Service) List(ctx context.Context) ([]string, error) {
	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var names []string
	for obj := range s.storage.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Fetch reads one archive object back.
func (s *Service) Fetch(ctx context.Context, objectName string) (*Archive, error) {
	reader, err := s.storage.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var snapshot Archive
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode archive %q: %w", objectName, err)
	}
	return &snapshot, nil
}

// Delete removes one archive object.
func (s *Service) Delete(ctx context.Context, objectName string) error {
	return s.storage.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.storage.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}
