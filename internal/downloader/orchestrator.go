// Package downloader fetches saved wallpapers into the local cache directory
// and records the result in the saved list once each download settles.
package downloader

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go-wallhaven-rotator/internal/models"
	"go-wallhaven-rotator/internal/notify"
	"go-wallhaven-rotator/internal/query"

	log "github.com/sirupsen/logrus"
)

// ErrAlreadyPending is returned when a download for the same URL is still in flight.
var ErrAlreadyPending = errors.New("download already pending for URL")

const msgURLOnly = "Download failed, saving URL only"

// Saver records a finished download in the saved list. *library.Library implements it.
type Saver interface {
	Save(fullURL, thumbURL, localPath string, isDark models.Darkness) (bool, error)
}

type request struct {
	url  string
	kind CommandKind
}

// Orchestrator drives each queued URL through directory creation and
// transfer and hands the outcome to the Saver. All events are handled
// serially; the pending table is keyed by source URL.
type Orchestrator struct {
	exec     Executor
	saver    Saver
	notifier notify.Notifier
	cacheDir string
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	pending  map[string]*models.PendingDownload
	requests map[RequestID]request
	settled  chan struct{}
}

// Options configures an Orchestrator.
type Options struct {
	CacheDir string
	// Timeout after which a pending download is abandoned. Zero disables expiry.
	Timeout  time.Duration
	Notifier notify.Notifier
	Now      func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(exec Executor, saver Saver, opts Options) *Orchestrator {
	if opts.Notifier == nil {
		opts.Notifier = notify.LogNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		exec:     exec,
		saver:    saver,
		notifier: opts.Notifier,
		cacheDir: opts.CacheDir,
		timeout:  opts.Timeout,
		now:      opts.Now,
		pending:  make(map[string]*models.PendingDownload),
		requests: make(map[RequestID]request),
		settled:  make(chan struct{}, 1),
	}
}

// QueueDownload starts downloading url into the cache directory. URLs
// without a catalog id, or a missing cache directory, are saved URL-only
// right away.
func (o *Orchestrator) QueueDownload(ctx context.Context, url, thumbnailURL string, isDark models.Darkness) error {
	wallhavenID, ok := query.ExtractCatalogID(url)
	if !ok {
		log.WithField("url", url).Info("Could not extract Wallhaven ID from URL, saving URL only")
		return o.finalize(url, thumbnailURL, "", isDark)
	}
	if o.cacheDir == "" {
		log.WithField("url", url).Warn("Cache directory is not configured, saving URL only")
		o.notifier.Notify(notify.Title, msgURLOnly, notify.IconWarning, false)
		return o.finalize(url, thumbnailURL, "", isDark)
	}

	o.mu.Lock()
	if _, exists := o.pending[url]; exists {
		o.mu.Unlock()
		return ErrAlreadyPending
	}
	localPath := filepath.Join(o.cacheDir, wallhavenID+".jpg")
	o.pending[url] = &models.PendingDownload{
		Thumbnail:   thumbnailURL,
		LocalPath:   localPath,
		WallhavenID: wallhavenID,
		IsDark:      isDark,
		Stage:       models.StageQueued,
		QueuedAt:    o.now(),
	}
	id := o.exec.Execute(ctx, Command{Kind: KindEnsureDir, Dir: o.cacheDir})
	o.requests[id] = request{url: url, kind: KindEnsureDir}
	o.mu.Unlock()

	log.WithFields(log.Fields{"url": url, "target": localPath}).Info("Downloading wallpaper")
	return nil
}

// HandleCompletion advances the pending download the completion belongs to.
// Completions for unknown requests are ignored.
func (o *Orchestrator) HandleCompletion(ctx context.Context, c Completion) error {
	defer o.exec.Release(c.ID)

	logEntry := log.WithFields(log.Fields{
		"request":  c.ID,
		"command":  c.Command.String(),
		"exitCode": c.ExitCode,
	})
	logEntry.Debugf("Command finished, stdout: %q, stderr: %q", c.Stdout, c.Stderr)

	o.mu.Lock()
	req, ok := o.requests[c.ID]
	delete(o.requests, c.ID)
	var info *models.PendingDownload
	if ok {
		info, ok = o.pending[req.url]
	}
	if !ok {
		o.mu.Unlock()
		logEntry.Debug("No pending download for completion, ignoring")
		return nil
	}

	if req.kind == KindEnsureDir && c.Succeeded() {
		info.Stage = models.StageDirReady
		id := o.exec.Execute(ctx, Command{Kind: KindTransfer, Target: info.LocalPath, URL: req.url})
		o.requests[id] = request{url: req.url, kind: KindTransfer}
		info.Stage = models.StageTransferring
		o.mu.Unlock()
		logEntry.WithField("url", req.url).Debug("Directory ready, starting transfer")
		return nil
	}

	entry := *info
	delete(o.pending, req.url)
	o.mu.Unlock()
	defer o.signalSettled()

	localPath := ""
	if req.kind == KindTransfer && c.Succeeded() {
		localPath = entry.LocalPath
		logEntry.WithField("path", localPath).Info("Download successful")
	} else {
		if req.kind == KindEnsureDir {
			logEntry.Warnf("Failed to create directory: %s", c.Stderr)
		} else {
			logEntry.Warnf("Download failed: %s", c.Stderr)
		}
		o.notifier.Notify(notify.Title, msgURLOnly, notify.IconWarning, false)
	}
	return o.finalize(req.url, entry.Thumbnail, localPath, entry.IsDark)
}

// ExpireStale abandons pending downloads queued longer than the timeout
// ago. They are saved URL-only and their in-flight requests released.
func (o *Orchestrator) ExpireStale(now time.Time) int {
	if o.timeout <= 0 {
		return 0
	}
	return o.abandon("Download timed out", func(info *models.PendingDownload) bool {
		return now.Sub(info.QueuedAt) >= o.timeout
	})
}

// Abandon gives up on every pending download regardless of age, saving each
// URL-only. Used when the caller stops waiting.
func (o *Orchestrator) Abandon() int {
	return o.abandon("Download abandoned", func(*models.PendingDownload) bool { return true })
}

func (o *Orchestrator) abandon(reason string, match func(*models.PendingDownload) bool) int {
	type expired struct {
		url  string
		info models.PendingDownload
	}
	var stale []expired

	o.mu.Lock()
	for url, info := range o.pending {
		if match(info) {
			stale = append(stale, expired{url: url, info: *info})
			delete(o.pending, url)
		}
	}
	var release []RequestID
	for id, req := range o.requests {
		if _, still := o.pending[req.url]; !still {
			release = append(release, id)
			delete(o.requests, id)
		}
	}
	o.mu.Unlock()

	for _, id := range release {
		o.exec.Release(id)
	}
	for _, s := range stale {
		log.WithFields(log.Fields{"url": s.url, "stage": s.info.Stage}).Warn(reason)
		o.notifier.Notify(notify.Title, msgURLOnly, notify.IconWarning, false)
		if err := o.finalize(s.url, s.info.Thumbnail, "", s.info.IsDark); err != nil {
			log.WithError(err).WithField("url", s.url).Error("Failed to save abandoned download")
		}
	}
	if len(stale) > 0 {
		o.signalSettled()
	}
	return len(stale)
}

// Pending returns the number of downloads still in flight.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Snapshot returns a copy of the pending table.
func (o *Orchestrator) Snapshot() map[string]models.PendingDownload {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]models.PendingDownload, len(o.pending))
	for url, info := range o.pending {
		out[url] = *info
	}
	return out
}

// Settled receives a value whenever a pending download is finalized.
func (o *Orchestrator) Settled() <-chan struct{} { return o.settled }

// Run handles completions and expires stale downloads until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-o.exec.Completions():
			if err := o.HandleCompletion(ctx, c); err != nil {
				log.WithError(err).Error("Failed to record download result")
			}
		case <-ticker.C:
			o.ExpireStale(o.now())
		}
	}
}

// Drain runs the event loop until no download is pending. If ctx ends first
// the remaining downloads are abandoned and saved URL-only.
func (o *Orchestrator) Drain(ctx context.Context) error {
	ticker := time.NewTicker(o.tickInterval())
	defer ticker.Stop()

	for o.Pending() > 0 {
		select {
		case <-ctx.Done():
			o.Abandon()
			return ctx.Err()
		case c := <-o.exec.Completions():
			if err := o.HandleCompletion(ctx, c); err != nil {
				return err
			}
		case <-ticker.C:
			o.ExpireStale(o.now())
		}
	}
	return nil
}

func (o *Orchestrator) tickInterval() time.Duration {
	if o.timeout > 0 && o.timeout < 4*time.Second {
		return o.timeout / 4
	}
	return time.Second
}

func (o *Orchestrator) finalize(url, thumbnailURL, localPath string, isDark models.Darkness) error {
	_, err := o.saver.Save(url, thumbnailURL, localPath, isDark)
	return err
}

func (o *Orchestrator) signalSettled() {
	select {
	case o.settled <- struct{}{}:
	default:
	}
}
