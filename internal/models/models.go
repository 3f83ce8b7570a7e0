package models

import "time"

type (
	Config struct {
		// Connection/Auth
		ApiKey string `toml:"ApiKey"`

		// Paths
		DatabasePath   string `toml:"DatabasePath"`
		CacheDir       string `toml:"CacheDir"`       // Where saved wallpapers are downloaded to
		BleveIndexPath string `toml:"BleveIndexPath"` // Saved wallpaper search index

		// Catalog Query
		SearchURL         string `toml:"SearchUrl"` // Defaults to the public Wallhaven search endpoint
		Query             string `toml:"Query"`     // Comma separated alternative search terms
		Sorting           string `toml:"Sorting"`
		FollowSystemTheme bool   `toml:"FollowSystemTheme"`
		CategoryGeneral   bool   `toml:"CategoryGeneral"`
		CategoryAnime     bool   `toml:"CategoryAnime"`
		CategoryPeople    bool   `toml:"CategoryPeople"`
		PuritySFW         bool   `toml:"PuritySFW"`
		PuritySketchy     bool   `toml:"PuritySketchy"`
		PurityNSFW        bool   `toml:"PurityNSFW"`
		RatioAny          bool   `toml:"RatioAny"`
		Ratio169          bool   `toml:"Ratio169"`
		Ratio1610         bool   `toml:"Ratio1610"`
		RatioCustom       bool   `toml:"RatioCustom"`
		RatioCustomValue  string `toml:"RatioCustomValue"`

		// Rotation Policy
		UseSavedWallpapers     bool `toml:"UseSavedWallpapers"`
		ShuffleSavedWallpapers bool `toml:"ShuffleSavedWallpapers"`
		CycleSavedWallpapers   bool `toml:"CycleSavedWallpapers"`

		// Downloader Behavior
		Executor            string `toml:"Executor"` // "shell" or "native"
		DownloadTimeoutSec  int    `toml:"DownloadTimeoutSec"`
		ApiClientTimeoutSec int    `toml:"ApiClientTimeoutSec"`

		// Display
		SetWallpaperCommand string `toml:"SetWallpaperCommand"` // %s is replaced by the image path or URL

		// Other
		LogApiRequests bool `toml:"LogApiRequests"`
	}

	// SavedEntry is one decoded record of the saved wallpaper list.
	SavedEntry struct {
		FullURL   string
		ThumbURL  string
		LocalPath string
		IsDark    Darkness
		// Serialized is the exact stored form the entry was decoded from.
		Serialized string
	}

	// State is the persisted snapshot read and written by the rotation core.
	State struct {
		SavedWallpapers      []string `json:"savedWallpapers"`
		ShownSavedWallpapers []string `json:"shownSavedWallpapers"`
		CurrentURL           string   `json:"currentUrl"`
		Thumbnail            string   `json:"thumbnail"`
		LastValidImagePath   string   `json:"lastValidImagePath"`
		CurrentIsDark        Darkness `json:"currentIsDark"`
		SearchTermIndex      int      `json:"searchTermIndex"`
	}

	// PendingDownload is the in-memory bookkeeping for one queued download, keyed by source URL.
	PendingDownload struct {
		Thumbnail   string
		LocalPath   string
		WallhavenID string
		IsDark      Darkness
		Stage       DownloadStage
		QueuedAt    time.Time
	}

	// Wallpaper is a single result from the catalog search endpoint.
	Wallpaper struct {
		ID         string
		URL        string
		Thumbnail  string
		Resolution string
	}

	// --- Start: Wallhaven /api/v1/search Structures ---

	SearchApiResponse struct {
		Data []SearchApiItem `json:"data"`
		Meta SearchApiMeta   `json:"meta"`
	}

	SearchApiItem struct {
		ID         string          `json:"id"`
		URL        string          `json:"url"`
		Path       string          `json:"path"`
		Resolution string          `json:"resolution"`
		Ratio      string          `json:"ratio"`
		Purity     string          `json:"purity"`
		Category   string          `json:"category"`
		Thumbs     SearchApiThumbs `json:"thumbs"`
	}

	SearchApiThumbs struct {
		Large    string `json:"large"`
		Original string `json:"original"`
		Small    string `json:"small"`
	}

	SearchApiMeta struct {
		CurrentPage int    `json:"current_page"`
		LastPage    int    `json:"last_page"`
		PerPage     any    `json:"per_page"` // Wallhaven returns this as a string or a number
		Total       int    `json:"total"`
		Seed        string `json:"seed"`
	}
	// --- End: Wallhaven /api/v1/search Structures ---
)

// Darkness is the tri-state theme hint stored with a saved entry.
type Darkness int

const (
	DarkUnknown Darkness = iota
	DarkNo
	DarkYes
)

// DarknessOf converts a known boolean into a Darkness value.
func DarknessOf(dark bool) Darkness {
	if dark {
		return DarkYes
	}
	return DarkNo
}

func (d Darkness) String() string {
	switch d {
	case DarkYes:
		return "dark"
	case DarkNo:
		return "light"
	default:
		return "unknown"
	}
}

// DownloadStage tracks where a pending download is in its lifecycle.
type DownloadStage string

// Download Stage Constants
const (
	StageQueued       DownloadStage = "Queued"
	StageDirReady     DownloadStage = "DirReady"
	StageTransferring DownloadStage = "Transferring"
	StageSavedLocal   DownloadStage = "SavedLocal"
	StageSavedURLOnly DownloadStage = "SavedURLOnly"
)

// Flag looks up a boolean configuration toggle by its TOML key.
// Unknown keys are false.
func (c Config) Flag(key string) bool {
	switch key {
	case "FollowSystemTheme":
		return c.FollowSystemTheme
	case "CategoryGeneral":
		return c.CategoryGeneral
	case "CategoryAnime":
		return c.CategoryAnime
	case "CategoryPeople":
		return c.CategoryPeople
	case "PuritySFW":
		return c.PuritySFW
	case "PuritySketchy":
		return c.PuritySketchy
	case "PurityNSFW":
		return c.PurityNSFW
	case "RatioAny":
		return c.RatioAny
	case "Ratio169":
		return c.Ratio169
	case "Ratio1610":
		return c.Ratio1610
	case "RatioCustom":
		return c.RatioCustom
	case "UseSavedWallpapers":
		return c.UseSavedWallpapers
	case "ShuffleSavedWallpapers":
		return c.ShuffleSavedWallpapers
	case "CycleSavedWallpapers":
		return c.CycleSavedWallpapers
	case "LogApiRequests":
		return c.LogApiRequests
	}
	return false
}
