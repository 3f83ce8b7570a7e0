package cmd

import (
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-wallhaven-rotator/index"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the saved wallpaper index",
	Long: `Performs a search against the Bleve index of saved wallpapers.

Supports Bleve's query string syntax. Indexed fields:
  - wallhavenId (string): Catalog id (e.g., ab12cd)
  - fullUrl (string): Full image URL
  - thumbUrl (string): Thumbnail URL
  - localPath (string): Cached file path, empty if not downloaded
  - source (string): "local" or "online"
  - darkness (string): "dark", "light" or "unknown"

Examples:
  wallhaven-rotator search -q "+source:local"
  wallhaven-rotator search -q "+darkness:dark"`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("query", "q", "", "Search query (uses Bleve query string syntax)")
	_ = searchCmd.MarkFlagRequired("query")
	_ = viper.BindPFlag("search.query", searchCmd.Flags().Lookup("query"))
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := viper.GetString("search.query")
	indexPath := globalConfig.BleveIndexPath
	if indexPath == "" {
		return errors.New("BleveIndexPath is not configured")
	}

	bleveIndex, err := bleve.Open(indexPath)
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return fmt.Errorf("search index not found at %s, save a wallpaper or run 'saved reindex' first", indexPath)
		}
		return fmt.Errorf("failed to open Bleve index at %s: %w", indexPath, err)
	}
	defer func() {
		if err := bleveIndex.Close(); err != nil {
			log.Errorf("Error closing Bleve index: %v", err)
		}
	}()

	results, err := index.SearchIndex(bleveIndex, query)
	if err != nil {
		return fmt.Errorf("error performing search: %w", err)
	}
	log.Debugf("Search finished. Hits: %d, Total: %d, Took: %s", len(results.Hits), results.Total, results.Took)

	if results.Total == 0 {
		fmt.Println("No results found matching your query.")
		return nil
	}
	fmt.Println("--- Search Results ---")
	for i, hit := range results.Hits {
		fmt.Printf("[%d] ID: %s (Score: %.2f)\n", i+1, hit.ID, hit.Score)
		for field, value := range hit.Fields {
			fmt.Printf("  %s: %v\n", field, value)
		}
		fmt.Println("---")
	}
	return nil
}
