package installer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	contents := "fake archive contents"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(contents)))
		w.Write([]byte(contents))
	}))
	defer ts.Close()

	dir := t.TempDir()
	destPath := filepath.Join(dir, "game.zip")

	events := make(chan Progress, 16)
	err := Fetch(context.Background(), ts.URL, destPath, events)
	require.NoError(t, err)
	close(events)

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, contents, string(got))

	// The temp file was renamed away.
	_, err = os.Stat(destPath + partSuffix)
	assert.True(t, os.IsNotExist(err), "The .part file should not survive a finished transfer")

	// The last progress event reports the full transfer.
	var last Progress
	count := 0
	for p := range events {
		last = p
		count++
	}
	require.True(t, count > 0, "Expected at least one progress event")
	assert.Equal(t, int64(len(contents)), last.Downloaded)
	assert.Equal(t, int64(len(contents)), last.Total)
	assert.Equal(t, 100, last.Percent)
}

func TestFetchCreatesDestDir(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer ts.Close()

	destPath := filepath.Join(t.TempDir(), "deep", "nested", "game.zip")
	require.NoError(t, Fetch(context.Background(), ts.URL, destPath, nil))
	_, err := os.Stat(destPath)
	assert.NoError(t, err)
}

func TestFetchBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	destPath := filepath.Join(t.TempDir(), "game.zip")
	err := Fetch(context.Background(), ts.URL, destPath, nil)
	require.Error(t, err)

	var te *TransferError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, ts.URL, te.Link)
}

// An interrupted transfer must leave neither the final file nor the .part
// temp file behind.
func TestFetchInterrupted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		w.Write([]byte("just a few bytes"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Drop the connection mid transfer.
		panic(http.ErrAbortHandler)
	}))
	defer ts.Close()

	dir := t.TempDir()
	destPath := filepath.Join(dir, "game.zip")

	err := Fetch(context.Background(), ts.URL, destPath, nil)
	require.Error(t, err)

	_, err = os.Stat(destPath)
	assert.True(t, os.IsNotExist(err), "The final file should not exist after an interrupted transfer")
	_, err = os.Stat(destPath + partSuffix)
	assert.True(t, os.IsNotExist(err), "The .part file should not exist after an interrupted transfer")
}

func TestFetchCancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	destPath := filepath.Join(t.TempDir(), "game.zip")
	err := Fetch(ctx, ts.URL, destPath, nil)
	require.Error(t, err)
	_, statErr := os.Stat(destPath)
	assert.True(t, os.IsNotExist(statErr))
}

// recordingShortcutCreator records the shortcut it was asked to create,
// and optionally fails.
type recordingShortcutCreator struct {
	gameName string
	target   string
	err      error
}

func (r *recordingShortcutCreator) Create(gameName, target string) error {
	r.gameName = gameName
	r.target = target
	return r.err
}

func TestFinalize(t *testing.T) {
	task := Task{
		DownloadID: "uuid-1234",
		GameName:   "racing rift",
		Executable: "game.exe",
		InstallDir: "/games/racing-rift",
	}

	sc := &recordingShortcutCreator{}
	var reportedID, reportedPath string
	complete := func(ctx context.Context, downloadID, installPath string) error {
		reportedID = downloadID
		reportedPath = installPath
		return nil
	}

	require.NoError(t, Finalize(context.Background(), task, sc, complete))
	assert.Equal(t, "racing rift", sc.gameName)
	assert.Equal(t, filepath.Join("/games/racing-rift", "game.exe"), sc.target)
	assert.Equal(t, "uuid-1234", reportedID)
	assert.Equal(t, "/games/racing-rift", reportedPath)
}

// A failed shortcut must not fail the install.
func TestFinalizeShortcutBestEffort(t *testing.T) {
	task := Task{DownloadID: "uuid-1234", GameName: "racing rift",
		Executable: "game.exe", InstallDir: "/games/racing-rift"}

	sc := &recordingShortcutCreator{err: errors.New("no desktop")}
	called := false
	complete := func(ctx context.Context, downloadID, installPath string) error {
		called = true
		return nil
	}

	assert.NoError(t, Finalize(context.Background(), task, sc, complete))
	assert.True(t, called, "Completion should be reported even when the shortcut fails")
}

func TestFinalizeCompleteError(t *testing.T) {
	task := Task{DownloadID: "uuid-1234", InstallDir: "/games/g"}
	complete := func(ctx context.Context, downloadID, installPath string) error {
		return errors.New("server unreachable")
	}
	assert.Error(t, Finalize(context.Background(), task, nil, complete))
}

func TestProgressPercentRounding(t *testing.T) {
	cases := []struct {
		downloaded int64
		total      int64
		percent    int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{499, 1000, 50},
		{1, 200, 1},
		{5, 0, 0},
	}
	for _, c := range cases {
		events := make(chan Progress, 1)
		emit(events, c.downloaded, c.total)
		p := <-events
		assert.Equal(t, c.percent, p.Percent, "percent for %d of %d bytes", c.downloaded, c.total)
		assert.Equal(t, c.downloaded, p.Downloaded)
		assert.Equal(t, c.total, p.Total)
	}
}
