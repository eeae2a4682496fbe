package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlink-dev/ledgerlink/internal/database"
)

type fakeStore struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (f *fakeStore) Upload(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]types.Object, error) {
	var objects []types.Object
	for key, data := range f.uploads {
		objects = append(objects, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(data))),
		})
	}
	return objects, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestService(t *testing.T, store objectStore) *BackupService {
	t.Helper()

	dataDir := t.TempDir()
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "references.db"),
		Profile: database.ProfileReference,
		Name:    "references",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE marker (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	return NewBackupService(store, db, dataDir, 3, zerolog.Nop())
}

func TestRunBackup_UploadsArchiveWithSnapshotAndMetadata(t *testing.T) {
	store := newFakeStore()
	service := newTestService(t, store)

	key, err := service.RunBackup(context.Background())
	require.NoError(t, err)

	assert.Contains(t, key, "ledgerlink-backup-")
	assert.Contains(t, key, ".tar.gz")

	data, ok := store.uploads[key]
	require.True(t, ok)

	// Archive holds the snapshot and its metadata
	names := archiveEntries(t, data)
	assert.Contains(t, names, "references.db")
	assert.Contains(t, names, "metadata.json")
}

func TestListBackups_NewestFirst(t *testing.T) {
	store := newFakeStore()
	service := newTestService(t, store)

	store.uploads["ledgerlink-backup-2024-03-01-000000.tar.gz"] = []byte("old")
	store.uploads["ledgerlink-backup-2024-03-10-000000.tar.gz"] = []byte("new")
	store.uploads["not-a-backup.txt"] = []byte("junk")

	backups, err := service.ListBackups(context.Background())
	require.NoError(t, err)

	require.Len(t, backups, 2)
	assert.Equal(t, "ledgerlink-backup-2024-03-10-000000.tar.gz", backups[0].Key)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), backups[1].Timestamp)
}

func TestPruneBackups_KeepsNewest(t *testing.T) {
	store := newFakeStore()
	service := newTestService(t, store)

	for _, day := range []string{"01", "02", "03", "04", "05"} {
		store.uploads["ledgerlink-backup-2024-03-"+day+"-000000.tar.gz"] = []byte("x")
	}

	require.NoError(t, service.PruneBackups(context.Background()))

	assert.Len(t, store.uploads, 3)
	assert.NotContains(t, store.uploads, "ledgerlink-backup-2024-03-01-000000.tar.gz")
	assert.NotContains(t, store.uploads, "ledgerlink-backup-2024-03-02-000000.tar.gz")
	assert.Contains(t, store.uploads, "ledgerlink-backup-2024-03-05-000000.tar.gz")
}

func TestPruneBackups_NothingToPrune(t *testing.T) {
	store := newFakeStore()
	service := newTestService(t, store)

	store.uploads["ledgerlink-backup-2024-03-01-000000.tar.gz"] = []byte("x")

	require.NoError(t, service.PruneBackups(context.Background()))
	assert.Empty(t, store.deleted)
}

func archiveEntries(t *testing.T, data []byte) []string {
	t.Helper()

	gzipReader, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tarReader := tar.NewReader(gzipReader)

	var names []string
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}
	return names
}
