package installer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExtractionError reports a failed archive extraction. The destination
// directory may be partially populated; callers can retry the extraction
// into the same directory.
type ExtractionError struct {
	Archive string
	Err     error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed: %v", e.Archive, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extract unpacks a zip archive into destDir, creating it if needed. The
// archive is deleted on success. Cancelling the context aborts the
// extraction.
func Extract(ctx context.Context, archive, destDir string) error {
	if err := extract(ctx, archive, destDir); err != nil {
		return &ExtractionError{Archive: archive, Err: err}
	}

	if err := os.Remove(archive); err != nil {
		return &ExtractionError{Archive: archive, Err: err}
	}
	return nil
}

func extract(ctx context.Context, archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrap(err, "creating destination dir")
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractFile(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destDir string) error {
	// Reject entries that try to escape the destination dir.
	path := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return errors.Errorf("illegal path in archive: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating dir")
	}

	src, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "opening %s in archive", f.Name)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return dst.Close()
}
