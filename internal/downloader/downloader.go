package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-wallhaven-rotator/internal/helpers"

	log "github.com/sirupsen/logrus"
)

// Custom Downloader Errors
var (
	ErrHttpStatus  = errors.New("unexpected HTTP status code")
	ErrFileSystem  = errors.New("filesystem error") // Covers create, remove, rename
	ErrHttpRequest = errors.New("HTTP request creation/execution error")
)

// Downloader fetches image files over HTTP into the cache directory.
type Downloader struct {
	client *http.Client
	apiKey string
}

// NewDownloader creates a new Downloader instance.
func NewDownloader(client *http.Client, apiKey string) *Downloader {
	if client == nil {
		client = &http.Client{
			Timeout: 5 * time.Minute,
		}
	}
	return &Downloader{
		client: client,
		apiKey: apiKey,
	}
}

// DownloadFile downloads url to targetFilepath. The body is written to a
// temporary file next to the target and renamed into place only once the
// transfer completed, so a failed download never leaves a partial image
// behind. progress, if non-nil, receives the byte counter while copying.
func (d *Downloader) DownloadFile(ctx context.Context, targetFilepath string, url string, progress *helpers.CounterWriter) (int64, error) {
	targetDir := filepath.Dir(targetFilepath)
	if !helpers.CheckAndMakeDir(targetDir) {
		return 0, fmt.Errorf("%w: failed to create target directory %s", ErrFileSystem, targetDir)
	}

	tempFile, err := os.CreateTemp(targetDir, filepath.Base(targetFilepath)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: creating temporary file for %s: %w", ErrFileSystem, targetFilepath, err)
	}
	shouldCleanupTemp := true
	defer func() {
		if shouldCleanupTemp {
			tempFile.Close()
			log.Debugf("Cleaning up temporary file via defer: %s", tempFile.Name())
			if removeErr := os.Remove(tempFile.Name()); removeErr != nil && !os.IsNotExist(removeErr) {
				log.WithError(removeErr).Warnf("Failed to remove temporary file %s during defer cleanup", tempFile.Name())
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: creating download request for %s: %w", ErrHttpRequest, url, err)
	}
	if d.apiKey != "" {
		req.Header.Set("X-API-Key", d.apiKey)
	}

	log.WithField("url", url).Debug("Starting wallpaper download")
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: performing request for %s: %v", ErrHttpRequest, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: received status %d from %s", ErrHttpStatus, resp.StatusCode, url)
	}

	size, _ := strconv.ParseUint(resp.Header.Get("Content-Length"), 10, 64)
	counter := progress
	if counter == nil {
		counter = &helpers.CounterWriter{}
	}
	counter.Writer = tempFile

	log.Debugf("Downloading to %s (Target: %s, Size: %s)...", tempFile.Name(), targetFilepath, helpers.BytesToSize(size))
	written, err := io.Copy(counter, resp.Body)
	if err != nil {
		return written, fmt.Errorf("%w: writing temporary file %s: %v", ErrFileSystem, tempFile.Name(), err)
	}

	if err := tempFile.Close(); err != nil {
		return written, fmt.Errorf("%w: closing temp file %s: %w", ErrFileSystem, tempFile.Name(), err)
	}

	if err = os.Rename(tempFile.Name(), targetFilepath); err != nil {
		return written, fmt.Errorf("%w: renaming temporary file %s to %s: %v", ErrFileSystem, tempFile.Name(), targetFilepath, err)
	}
	shouldCleanupTemp = false

	log.Infof("Downloaded %s (%s)", targetFilepath, helpers.BytesToSize(uint64(written)))
	return written, nil
}
