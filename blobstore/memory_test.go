package blobstore_test

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/digitstream/blobstore"
	"github.com/hupe1980/digitstream/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	data := []byte(testutil.PiPrefix)

	require.NoError(t, store.Put(ctx, "pi.txt", data))

	blob, err := store.Open(ctx, "pi.txt")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	p := make([]byte, 5)
	n, err := blob.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	require.Equal(t, "3.141", string(p[:n]))
}

func TestMemoryStore_OpenMissing(t *testing.T) {
	store := blobstore.NewMemoryStore()

	_, err := store.Open(context.Background(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestMemoryStore_ReadRange(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	data := testutil.Sequence(5, 1000)
	require.NoError(t, store.Put(ctx, "seq", data))

	blob, err := store.Open(ctx, "seq")
	require.NoError(t, err)
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 100, 50)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data[100:150], got)

	// Range over the end clamps.
	rc, err = blob.ReadRange(ctx, 990, 100)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data[990:], got)

	// Range at or past the end is empty, not an error.
	rc, err = blob.ReadRange(ctx, 1000, 10)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore_ReadAtEOF(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "short", []byte("3.14")))

	blob, err := store.Open(ctx, "short")
	require.NoError(t, err)
	defer blob.Close()

	p := make([]byte, 10)
	n, err := blob.ReadAt(ctx, p, 2)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 2, n)
	require.Equal(t, "14", string(p[:n]))

	_, err = blob.ReadAt(ctx, p, 4)
	require.ErrorIs(t, err, io.EOF)
}

func TestMemoryStore_CreateVisibleOnClose(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	w, err := store.Create(ctx, "out")
	require.NoError(t, err)
	_, err = w.Write([]byte("3.14"))
	require.NoError(t, err)
	_, err = w.Write([]byte("159"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "out")
	require.ErrorIs(t, err, blobstore.ErrNotFound, "blob must not be visible before Close")

	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "out")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(7), blob.Size())
}

func TestMemoryStore_OpenIsolatesData(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	data := []byte("3.14")
	require.NoError(t, store.Put(ctx, "pi", data))

	data[0] = 'X' // mutate the caller's slice after Put

	blob, err := store.Open(ctx, "pi")
	require.NoError(t, err)
	defer blob.Close()

	p := make([]byte, 4)
	_, err = blob.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	require.Equal(t, "3.14", string(p))
}

func TestMemoryStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "digits/pi", []byte("3.14")))
	require.NoError(t, store.Put(ctx, "digits/e", []byte("2.71")))
	require.NoError(t, store.Put(ctx, "other", []byte("x")))

	names, err := store.List(ctx, "digits/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"digits/pi", "digits/e"}, names)

	require.NoError(t, store.Delete(ctx, "digits/pi"))
	_, err = store.Open(ctx, "digits/pi")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
