package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Bucket is an interface to be followed by game archive storage
// implementations. Archives are opaque zip files addressed by file name.
type Bucket interface {
	// Store saves the contents of f under the given file name.
	Store(ctx context.Context, f io.Reader, name string) error
	// Open returns a reader for the stored archive and its size in bytes.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Remove deletes a stored archive.
	Remove(ctx context.Context, name string) error
	// Size returns the size in bytes of a stored archive.
	Size(ctx context.Context, name string) (int64, error)
	// DownloadLink returns a URL a client can fetch the archive from.
	// baseURL is the scheme://host[:port] of this server; implementations
	// backed by external storage are free to ignore it.
	DownloadLink(ctx context.Context, name, baseURL string) (string, error)
}

// DiskBucket is a Bucket implementation backed by a local directory.
// Downloads are served back through the server's own games-files route.
type DiskBucket struct {
	// Dir is the root directory holding the archives.
	Dir string
}

// NewDiskBucket initializes a DiskBucket rooted at dir, creating the
// directory if needed.
func NewDiskBucket(dir string) (*DiskBucket, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create games storage dir")
	}
	return &DiskBucket{Dir: dir}, nil
}

// path resolves a stored archive name to a path under Dir. The name is
// flattened to its base to keep callers from escaping the storage root.
func (b *DiskBucket) path(name string) string {
	return filepath.Join(b.Dir, filepath.Base(name))
}

// Store saves the contents of f under the given file name.
func (b *DiskBucket) Store(ctx context.Context, f io.Reader, name string) error {
	target, err := os.Create(b.path(name))
	if err != nil {
		return errors.Wrap(err, "could not create archive file")
	}
	defer target.Close()
	if _, err := io.Copy(target, f); err != nil {
		os.Remove(target.Name())
		return errors.Wrap(err, "could not write archive file")
	}
	return nil
}

// Open returns a reader for the stored archive and its size in bytes.
func (b *DiskBucket) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(b.path(name))
	if err != nil {
		return nil, 0, errors.Wrap(err, "archive not found")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Remove deletes a stored archive.
func (b *DiskBucket) Remove(ctx context.Context, name string) error {
	return os.Remove(b.path(name))
}

// Size returns the size in bytes of a stored archive.
func (b *DiskBucket) Size(ctx context.Context, name string) (int64, error) {
	info, err := os.Stat(b.path(name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DownloadLink points back at this server's games-files route.
func (b *DiskBucket) DownloadLink(ctx context.Context, name, baseURL string) (string, error) {
	return baseURL + "/games-files/" + filepath.Base(name), nil
}
