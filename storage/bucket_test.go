package storage

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskBucket(t *testing.T) {
	dir, err := os.MkdirTemp("", "mlx-bucket-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := context.Background()
	b, err := NewDiskBucket(dir)
	require.NoError(t, err)

	contents := "fake zip contents"
	require.NoError(t, b.Store(ctx, strings.NewReader(contents), "game.zip"))

	size, err := b.Size(ctx, "game.zip")
	require.NoError(t, err)
	assert.Equal(t, int64(len(contents)), size)

	f, size, err := b.Open(ctx, "game.zip")
	require.NoError(t, err)
	assert.Equal(t, int64(len(contents)), size)
	got := new(bytes.Buffer)
	_, err = io.Copy(got, f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, contents, got.String())

	link, err := b.DownloadLink(ctx, "game.zip", "http://localhost:8000/1.0")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/1.0/games-files/game.zip", link)

	require.NoError(t, b.Remove(ctx, "game.zip"))
	_, _, err = b.Open(ctx, "game.zip")
	assert.Error(t, err)
	_, err = b.Size(ctx, "game.zip")
	assert.Error(t, err)
}

// Archive names are flattened to their base, so a crafted name cannot reach
// outside the storage root.
func TestDiskBucketFlattensNames(t *testing.T) {
	dir, err := os.MkdirTemp("", "mlx-bucket-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := context.Background()
	b, err := NewDiskBucket(dir)
	require.NoError(t, err)

	require.NoError(t, b.Store(ctx, strings.NewReader("data"), "../../evil.zip"))
	_, statErr := os.Stat(filepath.Join(dir, "evil.zip"))
	assert.NoError(t, statErr, "Archive should have been stored under the bucket root")

	f, _, err := b.Open(ctx, "evil.zip")
	require.NoError(t, err)
	f.Close()
}

// newFakeS3Bucket spins up an in-memory S3 server and returns a bucket
// backed by it.
func newFakeS3Bucket(t *testing.T) (*S3Bucket, func()) {
	backend := s3mem.New()
	faker := gofakes3.New(backend)
	ts := httptest.NewServer(faker.Server())

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials("TESTKEY", "TESTSECRET", ""),
		Endpoint:         aws.String(ts.URL),
		Region:           aws.String("us-east-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	})
	require.NoError(t, err)

	return NewS3BucketWithSession(sess, "games"), ts.Close
}

func TestS3Bucket(t *testing.T) {
	b, teardown := newFakeS3Bucket(t)
	defer teardown()

	ctx := context.Background()
	contents := "fake zip contents"
	require.NoError(t, b.Store(ctx, strings.NewReader(contents), "game.zip"))

	size, err := b.Size(ctx, "game.zip")
	require.NoError(t, err)
	assert.Equal(t, int64(len(contents)), size)

	f, size, err := b.Open(ctx, "game.zip")
	require.NoError(t, err)
	assert.Equal(t, int64(len(contents)), size)
	got := new(bytes.Buffer)
	_, err = io.Copy(got, f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, contents, got.String())

	// S3 links are presigned and do not go through the server.
	link, err := b.DownloadLink(ctx, "game.zip", "http://localhost:8000/1.0")
	require.NoError(t, err)
	assert.Contains(t, link, "game.zip")
	assert.NotContains(t, link, "localhost:8000")

	require.NoError(t, b.Remove(ctx, "game.zip"))
	_, err = b.Size(ctx, "game.zip")
	assert.Error(t, err)
}
