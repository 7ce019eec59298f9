// Package installer implements the desktop side install workflow: archive
// transfer with progress reporting, zip extraction, shortcut creation and
// completion reporting.
package installer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// partSuffix is appended to the destination file name while a transfer is
// in progress. The finished file only appears under its final name.
const partSuffix = ".part"

// fetchChunkSize is the copy buffer size for transfers. Progress events
// are emitted at most once per chunk.
const fetchChunkSize = 64 * 1024

// Progress is a transfer progress event.
type Progress struct {
	// Downloaded is the number of bytes received so far.
	Downloaded int64

	// Total is the expected size in bytes, or 0 when the server did not
	// send a Content-Length.
	Total int64

	// Percent is Downloaded over Total, or 0 when Total is unknown.
	Percent int
}

// TransferError reports a failed archive transfer. The destination file
// and its temp file are removed before the error is returned.
type TransferError struct {
	Link string
	Err  error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %s failed: %v", e.Link, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// Fetch downloads the archive at link into destPath. The transfer streams
// through a temp file with a .part suffix and is renamed into place only
// once complete, so an interrupted transfer never leaves a partial file
// under the final name.
//
// Progress events are sent to the events channel if it is not nil; the
// channel is not closed by Fetch. Cancelling the context aborts the
// transfer.
func Fetch(ctx context.Context, link, destPath string, events chan<- Progress) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return &TransferError{Link: link, Err: err}
	}

	tmpPath := destPath + partSuffix

	err := fetchToTemp(ctx, link, tmpPath, events)
	if err != nil {
		// Remove leftovers so a retry starts clean.
		os.Remove(tmpPath)
		os.Remove(destPath)
		return &TransferError{Link: link, Err: err}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &TransferError{Link: link, Err: err}
	}
	return nil
}

func fetchToTemp(ctx context.Context, link, tmpPath string, events chan<- Progress) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "requesting archive")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", res.Status)
	}

	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	total := res.ContentLength
	if total < 0 {
		total = 0
	}

	var downloaded int64
	buf := make([]byte, fetchChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}

		n, readErr := res.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				return errors.Wrap(writeErr, "writing temp file")
			}
			downloaded += int64(n)
			emit(events, downloaded, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			return errors.Wrap(readErr, "reading archive")
		}
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	return nil
}

func emit(events chan<- Progress, downloaded, total int64) {
	if events == nil {
		return
	}
	p := Progress{Downloaded: downloaded, Total: total}
	if total > 0 {
		// Round to the nearest integer percent.
		p.Percent = int((downloaded*100 + total/2) / total)
	}
	events <- p
}

// CompleteFunc reports a finished install to the server. It is satisfied
// by closing over client.Session.CompleteDownload.
type CompleteFunc func(ctx context.Context, downloadID, installPath string) error

// Task describes one install workflow.
type Task struct {
	// DownloadID is the server side ledger record id.
	DownloadID string

	// GameName is the display name of the game.
	GameName string

	// Executable is the file to run once installed, relative to InstallDir.
	Executable string

	// InstallDir is the directory the game was extracted into.
	InstallDir string
}

// Finalize finishes an install: it creates a desktop shortcut and reports
// completion to the server. Shortcut creation is best effort; a failure is
// logged and never fails the install. Completion reporting is idempotent
// on the server side, so Finalize can be retried safely.
func Finalize(ctx context.Context, t Task, sc ShortcutCreator, complete CompleteFunc) error {
	if sc != nil {
		if err := sc.Create(t.GameName, filepath.Join(t.InstallDir, t.Executable)); err != nil {
			log.Printf("Could not create shortcut for %s: %v", t.GameName, err)
		}
	}

	if err := complete(ctx, t.DownloadID, t.InstallDir); err != nil {
		return errors.Wrap(err, "reporting completion")
	}
	return nil
}
