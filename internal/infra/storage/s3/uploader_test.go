package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhotoStore(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr string
		wantURL string
	}{
		{name: "missing endpoint", params: Params{Bucket: "photos"}, wantErr: "endpoint"},
		{name: "missing bucket", params: Params{Endpoint: "localhost:9000"}, wantErr: "bucket"},
		{name: "bare host", params: Params{Endpoint: "localhost:9000", Bucket: "photos"}, wantURL: "http://localhost:9000/photos/properties/p1/a.jpg"},
		{name: "tls host", params: Params{Endpoint: "s3.example.com", Bucket: "photos", UseSSL: true}, wantURL: "https://s3.example.com/photos/properties/p1/a.jpg"},
		{name: "public endpoint", params: Params{Endpoint: "http://minio:9000", PublicEndpoint: "https://cdn.coastalstay.lk/", Bucket: "photos"}, wantURL: "https://cdn.coastalstay.lk/photos/properties/p1/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewPhotoStore(tt.params, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, store.objectURL("/properties/p1/a.jpg"))
		})
	}
}

func TestUpload_ValidatesBeforeNetwork(t *testing.T) {
	store, err := NewPhotoStore(Params{Endpoint: "localhost:9000", Bucket: "photos"}, nil)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "k", nil, 1, "image/png")
	assert.ErrorContains(t, err, "reader is required")
	_, err = store.Upload(context.Background(), " / ", strings.NewReader("x"), 1, "image/png")
	assert.ErrorContains(t, err, "object key is required")
}

func TestNoopStore(t *testing.T) {
	_, err := NoopStore{}.Upload(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}
