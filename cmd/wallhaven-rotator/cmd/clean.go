package cmd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-wallhaven-rotator/internal/helpers"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove temporary (.tmp) files from the cache directory",
	Long: `Recursively scans the configured CacheDir and removes any files ending
with the .tmp extension, left behind by interrupted downloads.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cacheDir := globalConfig.CacheDir
	if cacheDir == "" {
		return errors.New("CacheDir is not configured, nothing to clean")
	}

	log.Infof("Scanning for .tmp files in %s...", cacheDir)
	removed, failed, err := helpers.RemoveTempFiles(cacheDir)
	if err != nil {
		return err
	}
	log.Infof("Clean complete. Removed: %d .tmp file(s)", removed)
	if failed > 0 {
		return fmt.Errorf("failed to remove %d file(s)", failed)
	}
	return nil
}
