package pullhttp

import (
	"bytes"
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/pdfpull/internal/output"
	"github.com/tanq16/pdfpull/internal/utils"
)

type harness struct {
	home       string
	downloads  string
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	downloader *Downloader
}

func newHarness(t *testing.T, createDownloads bool) *harness {
	t.Helper()
	home := t.TempDir()
	downloads := filepath.Join(home, utils.DownloadsDirName)
	if createDownloads {
		require.NoError(t, os.MkdirAll(downloads, 0755))
	}
	h := &harness{
		home:      home,
		downloads: downloads,
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	console := &output.Console{Out: h.stdout, Err: h.stderr}
	client := utils.NewPullHTTPClient(utils.HTTPClientConfig{})
	h.downloader = NewDownloader(client, console, home)
	return h
}

func (h *harness) files(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(h.downloads)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	payload := make([]byte, size)
	_, err := rand.Read(payload)
	require.NoError(t, err)
	return payload
}

// servePayload answers HEAD with the declared length and GET with the body.
func servePayload(payload []byte, declareLength bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if declareLength {
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		}
		w.Header().Set("Content-Type", "application/pdf")
		if r.Method == http.MethodHead {
			return
		}
		if !declareLength {
			w.Write(payload[:len(payload)/2])
			w.(http.Flusher).Flush()
			w.Write(payload[len(payload)/2:])
			return
		}
		w.Write(payload)
	}
}

func TestDownloadKnownSize(t *testing.T) {
	payload := randomPayload(t, 2*1024*1024)
	srv := httptest.NewServer(servePayload(payload, true))
	defer srv.Close()

	h := newHarness(t, true)
	fixed := time.UnixMilli(1720526400123)
	h.downloader.now = func() time.Time { return fixed }

	err := h.downloader.Run(context.Background(), srv.URL+"/paper.pdf")
	require.NoError(t, err)

	dest := filepath.Join(h.downloads, "1720526400123.pdf")
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	out := h.stdout.String()
	assert.Contains(t, out, "Initializing...")
	assert.Contains(t, out, "File size: 2.00 MB")
	assert.Contains(t, out, "] 100% 0.0s")
	assert.Contains(t, out, "PDF downloaded successfully: "+dest)
	assert.Empty(t, h.stderr.String())
}

func TestDownloadTransferCounters(t *testing.T) {
	payload := randomPayload(t, 300*1024+17)
	srv := httptest.NewServer(servePayload(payload, true))
	defer srv.Close()

	h := newHarness(t, true)
	transfer, err := h.downloader.Download(context.Background(), srv.URL)
	require.NoError(t, err)

	info, err := os.Stat(transfer.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, utils.StateSucceeded, transfer.State)
	assert.Equal(t, int64(len(payload)), transfer.TotalBytes)
	assert.Equal(t, transfer.TotalBytes, transfer.BytesTransferred)
	assert.Equal(t, info.Size(), transfer.BytesTransferred)
}

func TestDownloadUnknownSize(t *testing.T) {
	payload := randomPayload(t, 128*1024)
	srv := httptest.NewServer(servePayload(payload, false))
	defer srv.Close()

	h := newHarness(t, true)
	transfer, err := h.downloader.Download(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, utils.UnknownSize, transfer.TotalBytes)
	assert.Equal(t, int64(len(payload)), transfer.BytesTransferred)
	got, err := os.ReadFile(transfer.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	out := h.stdout.String()
	assert.Contains(t, out, "File size: unknown")
	assert.Contains(t, out, "Downloading 128.00 KB")
	assert.NotContains(t, out, "%")
}

func TestDownloadProbeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	h := newHarness(t, true)
	err := h.downloader.Run(context.Background(), srv.URL+"/missing.pdf")
	require.ErrorIs(t, err, utils.ErrProbe)

	assert.Contains(t, h.stderr.String(), "Error occurred while downloading file")
	assert.Contains(t, h.stderr.String(), "404")
	assert.Empty(t, h.files(t))
	assert.NotContains(t, h.stdout.String(), "File size")
}

func TestDownloadProbeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	link := srv.URL
	srv.Close()

	h := newHarness(t, true)
	transfer, err := h.downloader.Download(context.Background(), link)
	require.ErrorIs(t, err, utils.ErrProbe)
	assert.Equal(t, utils.StateFailed, transfer.State)
	assert.Empty(t, h.files(t))
}

func TestDownloadMalformedURL(t *testing.T) {
	h := newHarness(t, true)
	err := h.downloader.Run(context.Background(), "::not a url")
	require.ErrorIs(t, err, utils.ErrProbe)
	assert.Contains(t, h.stderr.String(), "Error occurred while downloading file")
	assert.Empty(t, h.files(t))
}

func TestDownloadGetFailsAfterProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "100")
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := newHarness(t, true)
	transfer, err := h.downloader.Download(context.Background(), srv.URL)
	require.ErrorIs(t, err, utils.ErrTransfer)
	assert.Equal(t, utils.StateFailed, transfer.State)
	assert.Empty(t, h.files(t), "file is only opened after a successful GET")
}

func TestDownloadConnectionDropKeepsPartialFile(t *testing.T) {
	payload := randomPayload(t, 1000*1024)
	received := 500 * 1024
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(payload[:received])
		w.(http.Flusher).Flush()
		// returning short of the declared length makes the server drop the connection
	}))
	defer srv.Close()

	h := newHarness(t, true)
	err := h.downloader.Run(context.Background(), srv.URL)
	require.ErrorIs(t, err, utils.ErrTransfer)
	assert.Contains(t, h.stderr.String(), "Error occurred while downloading file")

	entries := h.files(t)
	require.Len(t, entries, 1)
	got, err := os.ReadFile(filepath.Join(h.downloads, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, payload[:received], got)
}

func TestDownloadUnwritableDestination(t *testing.T) {
	payload := randomPayload(t, 4096)
	srv := httptest.NewServer(servePayload(payload, true))
	defer srv.Close()

	h := newHarness(t, false) // Downloads is never created
	transfer, err := h.downloader.Download(context.Background(), srv.URL)
	require.ErrorIs(t, err, utils.ErrWrite)
	assert.Equal(t, utils.StateFailed, transfer.State)

	h.downloader.Run(context.Background(), srv.URL)
	assert.Contains(t, h.stderr.String(), "Error occurred while writing file")
	_, statErr := os.Stat(transfer.DestinationPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadReadOnlyDownloadsDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	payload := randomPayload(t, 4096)
	srv := httptest.NewServer(servePayload(payload, true))
	defer srv.Close()

	h := newHarness(t, true)
	require.NoError(t, os.Chmod(h.downloads, 0500))
	t.Cleanup(func() { os.Chmod(h.downloads, 0755) })

	err := h.downloader.Run(context.Background(), srv.URL)
	require.ErrorIs(t, err, utils.ErrWrite)
	assert.Contains(t, h.stderr.String(), "Error occurred while writing file")
	assert.Empty(t, h.files(t))
}

func TestDownloadSequentialRunsDoNotCollide(t *testing.T) {
	payload := randomPayload(t, 1024)
	srv := httptest.NewServer(servePayload(payload, true))
	defer srv.Close()

	h := newHarness(t, true)
	base := time.UnixMilli(1720526400000)
	calls := 0
	h.downloader.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	first, err := h.downloader.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := h.downloader.Download(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotEqual(t, first.DestinationPath, second.DestinationPath)
	assert.Len(t, h.files(t), 2)
}
