// Package wallpaper wires rotation, catalog search, downloads and the
// desktop together behind the three user actions: next, fetch and save.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go-wallhaven-rotator/internal/codec"
	"go-wallhaven-rotator/internal/library"
	"go-wallhaven-rotator/internal/models"
	"go-wallhaven-rotator/internal/notify"
	"go-wallhaven-rotator/internal/query"
	"go-wallhaven-rotator/internal/rotation"

	log "github.com/sirupsen/logrus"
)

// ErrNothingToSave is returned by SaveCurrent when no real wallpaper is on screen.
var ErrNothingToSave = errors.New("no valid wallpaper to save")

// placeholderImage is shown before any wallpaper was loaded.
const placeholderImage = "blackscreen.jpg"

// Searcher returns one wallpaper for a catalog search URL. *api.Client implements it.
type Searcher interface {
	Search(ctx context.Context, searchURL string) (models.Wallpaper, error)
}

// Downloads queues a remote wallpaper for caching. *downloader.Orchestrator implements it.
type Downloads interface {
	QueueDownload(ctx context.Context, url, thumbnailURL string, isDark models.Darkness) error
}

// Controller applies user actions to the persisted state.
type Controller struct {
	cfg       models.Config
	lib       *library.Library
	selector  *rotation.Selector
	search    Searcher
	downloads Downloads
	display   Display
	notifier  notify.Notifier
	intn      func(int) int
	// SystemDarkMode is the current desktop theme.
	SystemDarkMode bool
	// SaveFetched queues every newly fetched wallpaper for download into the saved list.
	SaveFetched bool
}

// Deps collects the Controller collaborators.
type Deps struct {
	Library   *library.Library
	Search    Searcher
	Downloads Downloads
	Display   Display
	Notifier  notify.Notifier
	// Intn returns a uniform random int in [0, n).
	Intn func(n int) int
}

// NewController creates a Controller.
func NewController(cfg models.Config, deps Deps) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	if deps.Intn == nil {
		deps.Intn = rand.IntN
	}
	if deps.Display == nil {
		deps.Display = CommandDisplay{Template: cfg.SetWallpaperCommand}
	}
	return &Controller{
		cfg:       cfg,
		lib:       deps.Library,
		selector:  rotation.NewSelector(deps.Intn),
		search:    deps.Search,
		downloads: deps.Downloads,
		display:   deps.Display,
		notifier:  deps.Notifier,
		intn:      deps.Intn,
	}
}

// LoadNext shows the next saved wallpaper, or fetches a new one when saved
// wallpapers are disabled or the selector asks for it.
func (c *Controller) LoadNext(ctx context.Context) error {
	if !c.cfg.UseSavedWallpapers {
		return c.FetchNew(ctx, "")
	}

	var d rotation.Decision
	err := c.lib.Update(func(state *models.State) error {
		d = c.selector.Next(rotation.Input{
			Policy:  rotation.Policy{Shuffle: c.cfg.ShuffleSavedWallpapers, Cycle: c.cfg.CycleSavedWallpapers},
			Saved:   codec.DecodeAll(state.SavedWallpapers),
			Shown:   state.ShownSavedWallpapers,
			Current: state.CurrentURL,
		})
		state.ShownSavedWallpapers = d.Shown
		if d.Action == rotation.Display {
			c.setCurrent(state, d.URL, d.Thumbnail, d.Entry.IsDark)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, n := range d.Notifications {
		c.notifier.Notify(n.Title, n.Message, n.Icon, n.IsError)
	}
	if d.Action == rotation.FetchRemote {
		return c.FetchNew(ctx, d.Reason)
	}
	return c.show(ctx, d.URL)
}

// FetchNew queries the catalog for a new wallpaper and shows it.
func (c *Controller) FetchNew(ctx context.Context, reason string) error {
	if reason != "" {
		log.WithField("reason", reason).Info("Fetching new wallpaper")
	}

	var searchURL string
	var sq query.SearchQuery
	err := c.lib.Update(func(state *models.State) error {
		searchURL, sq = query.BuildSearchURL(c.cfg, c.SystemDarkMode, state.SearchTermIndex, c.intn)
		state.SearchTermIndex = sq.NextIndex
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("query", sq.Query).Debug("Searching catalog")

	wp, err := c.search.Search(ctx, searchURL)
	if err != nil {
		c.notifier.Notify(notify.ErrorTitle, fmt.Sprintf("Failed to fetch wallpaper: %v", err), notify.IconError, true)
		return fmt.Errorf("fetching wallpaper for %q: %w", sq.Query, err)
	}

	isDark := models.DarkUnknown
	if c.cfg.FollowSystemTheme {
		isDark = models.DarknessOf(c.SystemDarkMode)
	}
	err = c.lib.Update(func(state *models.State) error {
		c.setCurrent(state, wp.URL, wp.Thumbnail, isDark)
		return nil
	})
	if err != nil {
		return err
	}
	if err := c.show(ctx, wp.URL); err != nil {
		return err
	}
	if c.SaveFetched {
		c.notifier.Notify(notify.Title, "Downloading wallpaper...", notify.IconDownload, false)
		if err := c.downloads.QueueDownload(ctx, wp.URL, wp.Thumbnail, isDark); err != nil {
			log.WithError(err).WithField("url", wp.URL).Warn("Could not queue fetched wallpaper")
		}
	}
	return nil
}

// SaveCurrent adds the wallpaper on screen to the saved list. Remote images
// are downloaded into the cache first.
func (c *Controller) SaveCurrent(ctx context.Context) error {
	state, err := c.lib.State()
	if err != nil {
		return err
	}
	current := state.CurrentURL
	if current == "" || current == placeholderImage {
		c.notifier.Notify(notify.ErrorTitle, "No valid wallpaper to save", notify.IconError, true)
		return ErrNothingToSave
	}

	if codec.IsRemoteURL(current) {
		c.notifier.Notify(notify.Title, "Downloading wallpaper...", notify.IconDownload, false)
		return c.downloads.QueueDownload(ctx, current, state.Thumbnail, state.CurrentIsDark)
	}
	// A cached copy of a saved wallpaper is the same record.
	for _, e := range codec.DecodeAll(state.SavedWallpapers) {
		if rotation.MatchesCurrent(e, current) {
			_, err = c.lib.Save(e.FullURL, e.ThumbURL, e.LocalPath, e.IsDark)
			return err
		}
	}
	_, err = c.lib.Save(current, state.Thumbnail, "", state.CurrentIsDark)
	return err
}

func (c *Controller) setCurrent(state *models.State, url, thumbnail string, isDark models.Darkness) {
	state.CurrentURL = url
	state.Thumbnail = thumbnail
	state.LastValidImagePath = url
	state.CurrentIsDark = isDark
}

func (c *Controller) show(ctx context.Context, image string) error {
	log.WithField("image", image).Info("Setting wallpaper")
	if err := c.display.SetWallpaper(ctx, codec.NormalizePath(image)); err != nil {
		c.notifier.Notify(notify.ErrorTitle, "Failed to set wallpaper", notify.IconError, true)
		return err
	}
	return nil
}
