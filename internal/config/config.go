package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go-wallhaven-rotator/internal/models"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Defaults applied when a key is missing from the config file.
const (
	DefaultConfigPath          = "config.toml"
	DefaultDatabasePath        = "wallhaven-rotator.db"
	DefaultSorting             = "random"
	DefaultExecutor            = "native"
	DefaultDownloadTimeoutSec  = 120
	DefaultApiClientTimeoutSec = 30
)

// toggleDefaults are boolean keys that default to true when absent.
var toggleDefaults = []string{
	"CategoryGeneral", "CategoryAnime", "CategoryPeople",
	"PuritySFW",
	"RatioAny",
	"CycleSavedWallpapers",
}

// LoadConfig reads the configuration from the specified path (defaulting to
// "config.toml"). A missing file is not an error: defaults are returned.
func LoadConfig(configFilePath string) (models.Config, error) {
	if configFilePath == "" {
		configFilePath = DefaultConfigPath
	}
	var cfg models.Config
	md, err := toml.DecodeFile(configFilePath, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnf("Config file %s not found, using defaults", configFilePath)
			return ApplyDefaults(models.Config{}, nil), nil
		}
		return models.Config{}, fmt.Errorf("error loading config file %s: %w", configFilePath, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown config keys in %s: %v", configFilePath, undecoded)
	}

	cfg = ApplyDefaults(cfg, md.IsDefined)
	log.Infof("Configuration loaded from %s", configFilePath)
	return cfg, nil
}

// ApplyDefaults fills unset fields. isDefined reports whether a key was
// present in the source file; nil means nothing was.
func ApplyDefaults(cfg models.Config, isDefined func(key ...string) bool) models.Config {
	if isDefined == nil {
		isDefined = func(...string) bool { return false }
	}
	for _, key := range toggleDefaults {
		if !isDefined(key) {
			setToggle(&cfg, key)
		}
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.BleveIndexPath == "" {
		cfg.BleveIndexPath = filepath.Join(filepath.Dir(cfg.DatabasePath), "wallhaven-saved.bleve")
	}
	if cfg.Sorting == "" {
		cfg.Sorting = DefaultSorting
	}
	switch cfg.Executor {
	case "shell", "native":
	case "":
		cfg.Executor = DefaultExecutor
	default:
		log.Warnf("Unknown Executor %q, using %q", cfg.Executor, DefaultExecutor)
		cfg.Executor = DefaultExecutor
	}
	if cfg.DownloadTimeoutSec <= 0 {
		cfg.DownloadTimeoutSec = DefaultDownloadTimeoutSec
	}
	if cfg.ApiClientTimeoutSec <= 0 {
		cfg.ApiClientTimeoutSec = DefaultApiClientTimeoutSec
	}
	return cfg
}

func setToggle(cfg *models.Config, key string) {
	switch key {
	case "CategoryGeneral":
		cfg.CategoryGeneral = true
	case "CategoryAnime":
		cfg.CategoryAnime = true
	case "CategoryPeople":
		cfg.CategoryPeople = true
	case "PuritySFW":
		cfg.PuritySFW = true
	case "RatioAny":
		cfg.RatioAny = true
	case "CycleSavedWallpapers":
		cfg.CycleSavedWallpapers = true
	}
}
