package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"go-wallhaven-rotator/index"
	"go-wallhaven-rotator/internal/api"
	"go-wallhaven-rotator/internal/database"
	"go-wallhaven-rotator/internal/downloader"
	"go-wallhaven-rotator/internal/library"
	"go-wallhaven-rotator/internal/notify"
	"go-wallhaven-rotator/internal/wallpaper"
)

// app holds the wired components a command works with.
type app struct {
	db           *database.DB
	index        bleve.Index
	library      *library.Library
	executor     downloader.Executor
	orchestrator *downloader.Orchestrator
	controller   *wallpaper.Controller
}

// openApp opens the state database and search index and wires the
// controller. The caller must call close.
func openApp() (*app, error) {
	cfg := globalConfig

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}

	var idx bleve.Index
	if cfg.BleveIndexPath != "" {
		idx, err = index.OpenOrCreateIndex(cfg.BleveIndexPath)
		if err != nil {
			log.WithError(err).Warnf("Search index unavailable at %s, continuing without it", cfg.BleveIndexPath)
			idx = nil
		}
	}

	notifier := notify.LogNotifier{}
	lib := library.New(db, idx, notifier)

	httpClient := &http.Client{
		Transport: globalHttpTransport,
		Timeout:   time.Duration(cfg.ApiClientTimeoutSec) * time.Second,
	}
	downloadClient := &http.Client{
		Timeout: time.Duration(cfg.DownloadTimeoutSec) * time.Second,
	}

	var exec downloader.Executor
	switch cfg.Executor {
	case "shell":
		exec = downloader.NewShellExecutor()
	default:
		exec = downloader.NewNativeExecutor(downloader.NewDownloader(downloadClient, cfg.ApiKey))
	}
	log.Debugf("Using %s download executor", cfg.Executor)

	orch := downloader.NewOrchestrator(exec, lib, downloader.Options{
		CacheDir: cfg.CacheDir,
		Timeout:  time.Duration(cfg.DownloadTimeoutSec) * time.Second,
		Notifier: notifier,
	})

	ctrl := wallpaper.NewController(cfg, wallpaper.Deps{
		Library:   lib,
		Search:    api.NewClient(httpClient, 0),
		Downloads: orch,
		Notifier:  notifier,
	})
	ctrl.SystemDarkMode = viper.GetBool("dark")

	return &app{
		db:           db,
		index:        idx,
		library:      lib,
		executor:     exec,
		orchestrator: orch,
		controller:   ctrl,
	}, nil
}

func (a *app) close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			log.WithError(err).Error("Error closing Bleve index")
		}
	}
	if err := a.db.Close(); err != nil {
		log.WithError(err).Error("Error closing database")
	}
}
