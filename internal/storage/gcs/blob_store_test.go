package gcs_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	gcsapi "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/filmcast/internal/storage/gcs"
)

// newTestBlobStore creates a BlobStore whose client talks to a test server.
func newTestBlobStore(t *testing.T, handler http.Handler) *gcs.BlobStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gcsapi.NewClient(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := gcs.New(client, gcs.Config{Bucket: "test-bucket"})
	require.NoError(t, err)
	return store
}

func TestNewValidation(t *testing.T) {
	_, err := gcs.New(nil, gcs.Config{Bucket: "b"})
	assert.Error(t, err)

	client, err := gcsapi.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()
	_, err = gcs.New(client, gcs.Config{})
	assert.Error(t, err)
}

func TestPutObject(t *testing.T) {
	objectName := "filmcast/all_movies.json"
	objectData := []byte(`{"1940": []}`)

	// Simulates the JSON API multipart upload.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/upload/storage/v1/b/test-bucket/o")
		assert.Equal(t, objectName, r.URL.Query().Get("name"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), string(objectData))
		assert.Contains(t, string(body), "application/json")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"bucket":"test-bucket","name":%q}`, objectName)
	})

	store := newTestBlobStore(t, handler)
	uri, err := store.PutObject(context.Background(), objectName, "application/json", bytes.NewReader(objectData))
	require.NoError(t, err)
	assert.Equal(t, "gs://test-bucket/filmcast/all_movies.json", uri)
}

func TestPutObjectError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	store := newTestBlobStore(t, handler)
	_, err := store.PutObject(context.Background(), "x.json", "application/json", bytes.NewReader([]byte("{}")))
	assert.Error(t, err)

	_, err = store.PutObject(context.Background(), " ", "", bytes.NewReader(nil))
	assert.Error(t, err)
}
