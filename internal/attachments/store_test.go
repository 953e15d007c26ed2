package attachments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftKeyStripsDirectories(t *testing.T) {
	key := DraftKey("d1", `C:\Users\me\photo.png`)
	assert.True(t, strings.HasPrefix(key, "products/drafts/d1/"))
	assert.True(t, strings.HasSuffix(key, "-photo.png"))

	key = DraftKey("d1", "../../etc/passwd")
	assert.NotContains(t, strings.TrimPrefix(key, "products/drafts/d1/"), "/")
}

func TestMemoryStorePutDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", "image/png", []byte("png")))
	obj, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, store.Put(ctx, "", "image/png", nil), ErrKeyRequired)
}

func TestNewS3StoreValidation(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)
	_, err = NewS3Store(context.Background(), S3Config{Bucket: "b"})
	assert.Error(t, err)
}

func TestS3StoreTalksPathStyle(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Endpoint:     srv.URL,
		Bucket:       "media",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "products/drafts/d1/x.png", "image/png", []byte("png")))
	require.NoError(t, store.Delete(ctx, "products/drafts/d1/x.png"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /media/products/drafts/d1/x.png",
		"DELETE /media/products/drafts/d1/x.png",
	}, seen)
}
