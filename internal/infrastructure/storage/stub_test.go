package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubDocumentStore_Upload(t *testing.T) {
	t.Run("stores object content", func(t *testing.T) {
		store := NewStubDocumentStore()

		err := store.Upload(context.Background(), "proposals/abc/EST-2041.pdf", []byte("%PDF-1.7"), "application/pdf")
		require.NoError(t, err)

		content, ok := store.Object("proposals/abc/EST-2041.pdf")
		assert.True(t, ok)
		assert.Equal(t, []byte("%PDF-1.7"), content)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		store := NewStubDocumentStore()

		err := store.Upload(context.Background(), "", []byte("data"), "application/pdf")
		assert.Error(t, err)
	})

	t.Run("copies content so caller mutation is invisible", func(t *testing.T) {
		store := NewStubDocumentStore()

		data := []byte("original")
		require.NoError(t, store.Upload(context.Background(), "k", data, "application/octet-stream"))
		data[0] = 'X'

		content, _ := store.Object("k")
		assert.Equal(t, []byte("original"), content)
	})
}

func TestStubDocumentStore_SignedURL(t *testing.T) {
	t.Run("returns URL for stored object", func(t *testing.T) {
		store := NewStubDocumentStore()
		require.NoError(t, store.Upload(context.Background(), "proposals/abc/EST-2041.pdf", []byte("pdf"), "application/pdf"))

		url, err := store.SignedURL(context.Background(), "proposals/abc/EST-2041.pdf", time.Hour)

		require.NoError(t, err)
		assert.Contains(t, url, "https://storage.example.com/download/proposals/abc/EST-2041.pdf")
	})

	t.Run("fails for unknown object", func(t *testing.T) {
		store := NewStubDocumentStore()

		_, err := store.SignedURL(context.Background(), "missing", time.Hour)
		assert.Error(t, err)
	})
}
