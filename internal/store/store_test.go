package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlsolr/internal/document"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ref(name string, spaces ...string) document.Reference {
	return document.Reference{Wiki: "xwiki", Spaces: spaces, Name: name}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&name)
	if err != nil {
		t.Errorf("documents table not found after idempotent opens: %v", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestOpen_WALMode(t *testing.T) {
	s := openTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestPutDocument_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := ref("WebHome", "Eng", "v1.0")
	require.NoError(t, s.PutDocument(ctx, 42, want))

	got, found, err := s.DocumentByID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestDocumentByID_Missing(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.DocumentByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutDocument_Replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutDocument(ctx, 1, ref("A", "Old")))
	require.NoError(t, s.PutDocument(ctx, 2, ref("B", "Other")))
	require.NoError(t, s.PutDocument(ctx, 1, ref("A", "New")))

	got, _, err := s.DocumentByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, got.Spaces)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// The rewrite moved id 1 after id 2.
	assert.Equal(t, int64(2), docs[0].ID)
	assert.Equal(t, int64(1), docs[1].ID)
}

func TestPutDocument_RejectsInvalidReference(t *testing.T) {
	s := openTestStore(t)

	err := s.PutDocument(context.Background(), 1, document.Reference{Name: "NoSpace"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space")
}

func TestDocumentsByFullName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutDocument(ctx, 5, ref("WebHome", "A")))
	require.NoError(t, s.PutDocument(ctx, 3, ref("WebHome", "A")))
	require.NoError(t, s.PutDocument(ctx, 4, ref("WebHome", "B")))

	docs, err := s.DocumentsByFullName(ctx, "A.WebHome")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(3), docs[0].ID)
	assert.Equal(t, int64(5), docs[1].ID)
}

func TestDeleteDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, 1, ref("A", "S")))

	deleted, err := s.DeleteDocument(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteDocument(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestResolver(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, 9, ref("Page", "S")))

	r := s.Resolver(ctx)
	got, found, err := r.DocumentByID(9)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "S.Page", document.Local(got))

	cur, err := s.Current(ctx, 9)()
	require.NoError(t, err)
	assert.Equal(t, got, cur)

	_, err = s.Current(ctx, 10)()
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(10), nf.ID)
}

func TestResolver_ClosedStoreFails(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	r := s.Resolver(context.Background())
	require.NoError(t, s.Close())

	_, found, err := r.DocumentByID(1)
	require.Error(t, err)
	assert.False(t, found)
}

func TestConcurrentReads(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, 1, ref("A", "S")))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.DocumentByID(ctx, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
