package cmd

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Keep rotating wallpapers on an interval",
	Long: `Runs in the foreground, showing the next wallpaper every --interval.
With --save-fetched every wallpaper fetched from Wallhaven is downloaded into
the saved collection in the background. Stop with Ctrl+C; downloads still in
flight at that point are saved URL-only.`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().Duration("interval", 30*time.Minute, "Time between wallpaper changes")
	_ = viper.BindPFlag("rotate.interval", rotateCmd.Flags().Lookup("interval"))
	rotateCmd.Flags().Bool("save-fetched", false, "Save every newly fetched wallpaper")
	_ = viper.BindPFlag("rotate.save-fetched", rotateCmd.Flags().Lookup("save-fetched"))
}

func runRotate(cmd *cobra.Command, args []string) error {
	interval := viper.GetDuration("rotate.interval")
	if interval <= 0 {
		return errors.New("--interval must be positive")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.controller.SaveFetched = viper.GetBool("rotate.save-fetched")

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return a.orchestrator.Run(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Infof("Rotating wallpapers every %s", interval)
		for {
			if err := a.controller.LoadNext(ctx); err != nil {
				log.WithError(err).Warn("Failed to change wallpaper")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	err = g.Wait()
	if n := a.orchestrator.Abandon(); n > 0 {
		log.Warnf("Stopped with %d download(s) in flight, kept their URLs only", n)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Stopping rotation")
	return nil
}
