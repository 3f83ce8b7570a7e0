package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-wallhaven-rotator/index"
	"go-wallhaven-rotator/internal/codec"
	"go-wallhaven-rotator/internal/library"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Inspect and manage the saved wallpaper collection",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved wallpapers in rotation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		state, err := a.library.State()
		if err != nil {
			return err
		}
		matches := library.FuzzyFilter(codec.DecodeAll(state.SavedWallpapers), viper.GetString("saved.filter"))
		shown := make(map[string]bool, len(state.ShownSavedWallpapers))
		for _, s := range state.ShownSavedWallpapers {
			shown[s] = true
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSOURCE\tTHEME\tSHOWN\tURL\tLOCAL PATH")
		for _, m := range matches {
			e := m.Entry
			source := "online"
			if e.LocalPath != "" {
				source = "local"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\n", m.Position, source, e.IsDark, shown[e.Serialized], e.FullURL, e.LocalPath)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d listed, %d saved, %d shown this cycle. Current: %s\n", len(matches), len(state.SavedWallpapers), len(state.ShownSavedWallpapers), state.CurrentURL)
		return nil
	},
}

var savedResetCmd = &cobra.Command{
	Use:   "reset-shown",
	Short: "Forget which saved wallpapers were shown this cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.library.ResetShown(); err != nil {
			return err
		}
		log.Info("Shown history cleared")
		return nil
	},
}

var savedReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the saved collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("saved.fresh") {
			if err := index.DeleteIndex(globalConfig.BleveIndexPath); err != nil {
				return fmt.Errorf("deleting search index: %w", err)
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.library.Reindex()
		if err != nil {
			return err
		}
		log.Infof("Indexed %d saved wallpapers", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedListCmd)
	savedListCmd.Flags().StringP("filter", "f", "", "Only list entries whose URL or local path fuzzily matches")
	_ = viper.BindPFlag("saved.filter", savedListCmd.Flags().Lookup("filter"))
	savedCmd.AddCommand(savedResetCmd)
	savedCmd.AddCommand(savedReindexCmd)
	savedReindexCmd.Flags().Bool("fresh", false, "Delete the existing index before rebuilding it")
	_ = viper.BindPFlag("saved.fresh", savedReindexCmd.Flags().Lookup("fresh"))
}
