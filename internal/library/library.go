// Package library owns the persisted saved-wallpaper list and shown history.
package library

import (
	"errors"
	"fmt"
	"sync"

	"go-wallhaven-rotator/index"
	"go-wallhaven-rotator/internal/codec"
	"go-wallhaven-rotator/internal/models"
	"go-wallhaven-rotator/internal/notify"
	"go-wallhaven-rotator/internal/query"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyURL is returned when saving an entry without a full URL.
var ErrEmptyURL = errors.New("saved entry requires a full URL")

// Store persists the rotator state snapshot. *database.DB implements it.
type Store interface {
	LoadState() (models.State, error)
	SaveState(models.State) error
}

// Library serializes all reads and writes of the persisted state.
type Library struct {
	store    Store
	index    bleve.Index // optional
	notifier notify.Notifier
	mu       sync.Mutex
}

// New creates a Library. idx may be nil to disable search indexing.
func New(store Store, idx bleve.Index, notifier notify.Notifier) *Library {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Library{store: store, index: idx, notifier: notifier}
}

// Save appends an entry unless one with the same full URL already exists.
// It reports whether a new entry was written.
func (l *Library) Save(fullURL, thumbURL, localPath string, isDark models.Darkness) (bool, error) {
	if fullURL == "" {
		return false, ErrEmptyURL
	}
	if thumbURL == "" {
		thumbURL = fullURL
	}
	localPath = codec.NormalizePath(localPath)

	var total int
	saved := false
	err := l.Update(func(state *models.State) error {
		for _, e := range codec.DecodeAll(state.SavedWallpapers) {
			if e.FullURL == fullURL {
				return nil
			}
		}
		state.SavedWallpapers = append(state.SavedWallpapers, codec.Encode(fullURL, thumbURL, localPath, isDark))
		total = len(state.SavedWallpapers)
		saved = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !saved {
		log.WithField("url", fullURL).Debug("Wallpaper already saved, skipping")
		l.notifier.Notify(notify.Title, "Wallpaper already saved", notify.IconInfo, false)
		return false, nil
	}

	logEntry := log.WithField("url", fullURL)
	if localPath != "" {
		logEntry = logEntry.WithField("local", localPath)
	}
	logEntry.Info("Saved wallpaper")
	l.indexEntry(fullURL, thumbURL, localPath, isDark)

	msg := fmt.Sprintf("Wallpaper saved (download failed). Total: %d", total)
	if localPath != "" {
		msg = fmt.Sprintf("Wallpaper downloaded and saved! Total: %d", total)
	}
	l.notifier.Notify(notify.Title, msg, notify.IconWallpaper, false)
	return true, nil
}

// Entries returns the decoded saved list in insertion order.
func (l *Library) Entries() ([]models.SavedEntry, error) {
	state, err := l.State()
	if err != nil {
		return nil, err
	}
	return codec.DecodeAll(state.SavedWallpapers), nil
}

// State returns the current persisted snapshot.
func (l *Library) State() (models.State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.LoadState()
}

// Update loads the state, applies fn and persists the result. Nothing is
// written if fn returns an error.
func (l *Library) Update(fn func(state *models.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.LoadState()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if err := fn(&state); err != nil {
		return err
	}
	if err := l.store.SaveState(state); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}
	return nil
}

// ResetShown clears the shown history so the next rotation starts a fresh cycle.
func (l *Library) ResetShown() error {
	return l.Update(func(state *models.State) error {
		state.ShownSavedWallpapers = []string{}
		return nil
	})
}

// Reindex rebuilds the search index from the saved list.
func (l *Library) Reindex() (int, error) {
	entries, err := l.Entries()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		l.indexEntry(e.FullURL, e.ThumbURL, e.LocalPath, e.IsDark)
	}
	return len(entries), nil
}

func (l *Library) indexEntry(fullURL, thumbURL, localPath string, isDark models.Darkness) {
	if l.index == nil {
		return
	}
	item := index.Item{
		ID:        fullURL,
		FullURL:   fullURL,
		ThumbURL:  thumbURL,
		LocalPath: localPath,
		Source:    "online",
		Darkness:  isDark.String(),
	}
	if id, ok := query.ExtractCatalogID(fullURL); ok {
		item.ID = id
		item.WallhavenID = id
	}
	if localPath != "" {
		item.Source = "local"
	}
	if err := index.IndexItem(l.index, item); err != nil {
		log.WithError(err).Warnf("Failed to index saved wallpaper %s", fullURL)
	}
}
