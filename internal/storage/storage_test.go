package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"/tmp/a.jpg":               "file",
		"relative/b.png":           "file",
		"file:///tmp/a.jpg":        "file",
		"https://example.com/x":    "https",
		"HTTP://example.com/x":     "http",
		"azblob://photos/2024.jpg": "azblob",
		"s3://bucket/key.png":      "s3",
		"://odd":                   "file",
	}
	for ref, want := range tests {
		assert.Equal(t, want, Scheme(ref), ref)
	}
}

func TestSplitBucketKey(t *testing.T) {
	bucket, key, err := splitBucketKey("s3://photos/2024/01/a.jpg", S3Scheme)
	require.NoError(t, err)
	assert.Equal(t, "photos", bucket)
	assert.Equal(t, "2024/01/a.jpg", key)

	for _, ref := range []string{"s3://photos", "s3:///a.jpg", "s3://photos/", "azblob://c/b"} {
		_, _, err := splitBucketKey(ref, S3Scheme)
		assert.Error(t, err, ref)
	}
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, pngData, 0o600))

	source := NewLocalSource()
	for _, ref := range []string{path, "file://" + path} {
		rc, err := source.Open(context.Background(), ref)
		require.NoError(t, err, ref)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, pngData, data)
	}

	_, err := source.Open(context.Background(), filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrNotFound)
}

type stubSource struct {
	body string
	refs []string
}

func (s *stubSource) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	s.refs = append(s.refs, ref)
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestRouter(t *testing.T) {
	router := NewRouter()
	remote := &stubSource{body: "remote"}
	router.Register(remote, "http", "HTTPS")

	assert.True(t, router.Supports("https"))
	assert.True(t, router.Supports("file"))
	assert.False(t, router.Supports("s3"))

	rc, err := router.Open(context.Background(), "https://example.com/a.jpg")
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, []string{"https://example.com/a.jpg"}, remote.refs)

	_, err = router.Open(context.Background(), "s3://bucket/key")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source(t *testing.T) {
	source := NewS3Source(&fakeS3{objects: map[string]string{"photos/a.jpg": "jpeg-bytes"}})

	rc, err := source.Open(context.Background(), "s3://photos/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = source.Open(context.Background(), "s3://photos/missing.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = source.Open(context.Background(), "s3://photos")
	assert.Error(t, err)
}
