package cmd

import (
	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next wallpaper",
	Long: `Shows the next wallpaper from the saved collection when UseSavedWallpapers
is enabled, following the shuffle and cycle settings. Falls back to a new
Wallhaven search when the collection is empty or exhausted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.controller.LoadNext(cmd.Context())
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and show a new wallpaper from Wallhaven",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.controller.FetchNew(cmd.Context(), "")
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(fetchCmd)
}
