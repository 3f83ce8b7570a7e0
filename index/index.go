package index

import (
	"os"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
)

const defaultIndexPath = "wallhaven-saved.bleve"

// Item is a saved wallpaper as indexed for search.
// Fields are searchable by their lowercase JSON tag names
// (e.g. '+wallhavenId:ab12cd' or '+source:local').
type Item struct {
	ID          string `json:"id"`                    // Wallhaven id, or the full URL when none can be extracted
	WallhavenID string `json:"wallhavenId,omitempty"` // Catalog id embedded in the URL
	FullURL     string `json:"fullUrl"`
	ThumbURL    string `json:"thumbUrl,omitempty"`
	LocalPath   string `json:"localPath,omitempty"`
	Source      string `json:"source"`   // "local" or "online"
	Darkness    string `json:"darkness"` // "dark", "light" or "unknown"
}

// OpenOrCreateIndex opens an existing Bleve index or creates a new one if it doesn't exist.
func OpenOrCreateIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		log.Debugf("Creating new index at: %s", indexPath)
		index, err = bleve.New(indexPath, bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		log.Debugf("Opened existing index at: %s", indexPath)
	}
	return index, nil
}

// IndexItem adds or updates an item in the index.
func IndexItem(index bleve.Index, item Item) error {
	return index.Index(item.ID, item)
}

// SearchIndex runs a query string search and returns all stored fields.
func SearchIndex(index bleve.Index, query string) (*bleve.SearchResult, error) {
	searchRequest := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	searchRequest.Fields = []string{"*"}
	return index.Search(searchRequest)
}

// DeleteIndex removes the index directory.
func DeleteIndex(indexPath string) error {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}
	log.Infof("Deleting index at: %s", indexPath)
	return os.RemoveAll(indexPath)
}
