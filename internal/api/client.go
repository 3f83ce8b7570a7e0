// Package api talks to the Wallhaven search endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-wallhaven-rotator/internal/models"

	log "github.com/sirupsen/logrus"
)

// Custom Error Types
var (
	ErrRateLimited  = errors.New("API rate limit exceeded")
	ErrUnauthorized = errors.New("API request unauthorized (check API key)")
	ErrNotFound     = errors.New("no wallpapers found for query")
	ErrServerError  = errors.New("API server error")
)

// Client queries the catalog search endpoint.
type Client struct {
	HttpClient *http.Client
}

// NewClient creates a new API client. A nil httpClient gets a client with
// the given timeout.
func NewClient(httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{HttpClient: httpClient}
}

// Search performs the search request and returns the first result. The
// search URL is expected to request random sorting, so the first result is
// already a random pick.
func (c *Client) Search(ctx context.Context, searchURL string) (models.Wallpaper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return models.Wallpaper{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return models.Wallpaper{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.Wallpaper{}, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return models.Wallpaper{}, ErrUnauthorized
	case resp.StatusCode >= 500:
		return models.Wallpaper{}, fmt.Errorf("%w (status code %d)", ErrServerError, resp.StatusCode)
	default:
		return models.Wallpaper{}, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Wallpaper{}, fmt.Errorf("error reading response body: %w", err)
	}

	var response models.SearchApiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		log.Debugf("Response body causing unmarshal error: %s", string(body))
		return models.Wallpaper{}, fmt.Errorf("error unmarshalling response JSON: %w", err)
	}

	if len(response.Data) == 0 {
		return models.Wallpaper{}, ErrNotFound
	}

	item := response.Data[0]
	wp := models.Wallpaper{
		ID:         item.ID,
		URL:        item.Path,
		Thumbnail:  item.Thumbs.Large,
		Resolution: item.Resolution,
	}
	if wp.URL == "" {
		return models.Wallpaper{}, fmt.Errorf("search result %q has no image path", item.ID)
	}
	if wp.Thumbnail == "" {
		wp.Thumbnail = wp.URL
	}

	log.WithFields(log.Fields{
		"id":         wp.ID,
		"resolution": wp.Resolution,
		"total":      response.Meta.Total,
	}).Debug("Search returned wallpaper")
	return wp, nil
}
