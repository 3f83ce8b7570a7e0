package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-wallhaven-rotator/internal/downloader"
	"go-wallhaven-rotator/internal/helpers"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current wallpaper to the collection",
	Long: `Adds the wallpaper currently on screen to the saved collection. Remote
wallpapers are downloaded into CacheDir first; if that fails only the URL
is kept.`,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().Duration("wait", 0, "Maximum time to wait for the download (0 uses DownloadTimeoutSec)")
	_ = viper.BindPFlag("save.wait", saveCmd.Flags().Lookup("wait"))
}

func runSave(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.controller.SaveCurrent(ctx); err != nil {
		return err
	}
	if a.orchestrator.Pending() == 0 {
		return nil
	}

	wait := viper.GetDuration("save.wait")
	if wait <= 0 {
		wait = time.Duration(globalConfig.DownloadTimeoutSec)*time.Second + 5*time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	writer := uilive.New()
	writer.Start()
	stopProgress := make(chan struct{})
	go reportProgress(writer, a, stopProgress)

	err = a.orchestrator.Drain(ctx)
	close(stopProgress)
	writer.Stop()
	if errors.Is(err, context.DeadlineExceeded) {
		log.WithField("wait", wait).Warn("Download did not finish in time, kept the URL only")
		return nil
	}
	if err != nil {
		log.WithError(err).Error("Download did not finish")
		return err
	}
	return nil
}

// reportProgress redraws the pending downloads until stop is closed.
func reportProgress(writer *uilive.Writer, a *app, stop <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	native, _ := a.executor.(*downloader.NativeExecutor)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		pending := a.orchestrator.Snapshot()
		var progress map[string]uint64
		if native != nil {
			progress = native.Progress()
		}
		urls := make([]string, 0, len(pending))
		for url := range pending {
			urls = append(urls, url)
		}
		sort.Strings(urls)
		for _, url := range urls {
			info := pending[url]
			fmt.Fprintf(writer, "[%s] %s -> %s %s\n", info.Stage, info.WallhavenID, info.LocalPath, helpers.BytesToSize(progress[url]))
		}
		writer.Flush()
	}
}
