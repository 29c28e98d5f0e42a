package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"reader-sync/core/storage/mocks"
	"reader-sync/feature/readinglist"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *readinglist.Store, *mocks.Client) {
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

	store := readinglist.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	client := &mocks.Client{}
	service := NewService(store, client, "reading-lists", zap.NewNop())
	return service, store, client
}

func TestExportUploadsSnapshot(t *testing.T) {
	service, store, client := newTestService(t)
	service.now = func() time.Time {
		return time.Date(2026, 7, 4, 10, 30, 0, 0, time.UTC)
	}

	list, err := store.CreateList("Science", "physics reading")
	require.NoError(t, err)
	require.NoError(t, store.AddArticles(list.ID, []readinglist.ArticleRef{
		{Project: "en.wikipedia.org", Title: "Quark"},
	}))

	var uploaded []byte
	client.On("BucketExists", mock.Anything, "reading-lists").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "reading-lists", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "reading-lists", "lists-2026-07-04T10-30-00Z.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			payload, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploaded = payload
		}).
		Return(minio.UploadInfo{}, nil)

	objectName, err := service.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lists-2026-07-04T10-30-00Z.json", objectName)
	client.AssertExpectations(t)

	var snapshot Archive
	require.NoError(t, json.Unmarshal(uploaded, &snapshot))
	require.Len(t, snapshot.Lists, 2)
	assert.Equal(t, readinglist.DefaultListName, snapshot.Lists[0].Name)
	assert.True(t, snapshot.Lists[0].IsDefault)
	assert.Equal(t, "Science", snapshot.Lists[1].Name)
	require.Len(t, snapshot.Lists[1].Entries, 1)
}

func TestExportSkipsBucketCreateWhenPresent(t *testing.T) {
	service, _, client := newTestService(t)

	client.On("BucketExists", mock.Anything, "reading-lists").Return(true, nil)
	client.On("PutObject", mock.Anything, "reading-lists", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	_, err := service.Export(context.Background())
	require.NoError(t, err)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportSurfacesUploadFailure(t *testing.T) {
	service, _, client := newTestService(t)

	client.On("BucketExists", mock.Anything, "reading-lists").Return(true, nil)
	client.On("PutObject", mock.Anything, "reading-lists", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := service.Export(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestListReturnsObjectNames(t *testing.T) {
	service, _, client := newTestService(t)

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "lists-2026-07-01T00-00-00Z.json"}
	ch <- minio.ObjectInfo{Key: "lists-2026-07-02T00-00-00Z.json"}
	close(ch)

	client.On("BucketExists", mock.Anything, "reading-lists").Return(true, nil)
	client.On("ListObjects", mock.Anything, "reading-lists", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	names, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lists-2026-07-01T00-00-00Z.json",
		"lists-2026-07-02T00-00-00Z.json",
	}, names)
}

func TestListWithoutBucket(t *testing.T) {
	service, _, client := newTestService(t)

	client.On("BucketExists", mock.Anything, "reading-lists").Return(false, nil)

	names, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchDecodesArchive(t *testing.T) {
	service, _, client := newTestService(t)

	payload, err := json.Marshal(Archive{
		ExportedAt: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Lists:      []ListSnapshot{{Name: "Saved", IsDefault: true}},
	})
	require.NoError(t, err)

	client.On("GetObject", mock.Anything, "reading-lists", "lists.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)

	snapshot, err := service.Fetch(context.Background(), "lists.json")
	require.NoError(t, err)
	require.Len(t, snapshot.Lists, 1)
	assert.Equal(t, "Saved", snapshot.Lists[0].Name)
}
