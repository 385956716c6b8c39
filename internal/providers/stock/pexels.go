// Package stock implements the secondary, keyword-searchable clip source
// used when the primary catalog yields too few clips.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxPerPage = 15

// Video is one downloadable stock clip.
type Video struct {
	ID       int
	URL      string
	Duration int
}

// Options configures the Pexels client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client queries the Pexels video search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type pexelsSearchResponse struct {
	TotalResults int `json:"total_results"`
	Videos       []struct {
		ID         int `json:"id"`
		Duration   int `json:"duration"`
		VideoFiles []struct {
			Link    string `json:"link"`
			Quality string `json:"quality"`
		} `json:"video_files"`
	} `json:"videos"`
}

// NewClient constructs a Pexels client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pexels.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search returns up to perPage clips matching the query. Each hit's first
// video file link is used, matching the download behavior the composition
// step expects.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]Video, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("stock: api key not configured")
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	endpoint := c.baseURL + "/videos/search?query=" + url.QueryEscape(query) + "&per_page=" + strconv.Itoa(perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("stock: create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stock: invoke search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stock: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("stock: decode response: %w", err)
	}

	videos := make([]Video, 0, len(decoded.Videos))
	for _, v := range decoded.Videos {
		if len(v.VideoFiles) == 0 {
			continue
		}
		videos = append(videos, Video{ID: v.ID, URL: v.VideoFiles[0].Link, Duration: v.Duration})
	}

	c.logger.Debug().
		Str("query", query).
		Int("total_results", decoded.TotalResults).
		Int("usable", len(videos)).
		Msg("stock: search completed")

	return videos, nil
}
