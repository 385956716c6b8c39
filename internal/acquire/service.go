// Package acquire downloads the clips a selection names, retrying transient
// failures and falling back to stock footage when too few clips survive.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/stock"
	"github.com/Shaheer-Khan1/AdGenerator/internal/selection"
)

// Source identifies where a clip came from.
type Source string

const (
	SourcePrimary  Source = "drive"
	SourceFallback Source = "stock"
)

// Clip is one downloaded video file ready for composition.
type Clip struct {
	Video  catalog.VideoEntry
	Path   string
	Source Source
}

// FailureClass partitions download errors by how they should be handled.
type FailureClass int

const (
	// ClassTransient covers network errors and 5xx responses; retried.
	ClassTransient FailureClass = iota
	// ClassNotFound covers 403/404 responses; never retried.
	ClassNotFound
	// ClassCorrupt covers empty or truncated files; retried once.
	ClassCorrupt
)

// DownloadError wraps a failure with its class so callers can decide whether
// the clip is worth another attempt.
type DownloadError struct {
	Class FailureClass
	Err   error
}

func (e *DownloadError) Error() string {
	switch e.Class {
	case ClassNotFound:
		return fmt.Sprintf("not found: %v", e.Err)
	case ClassCorrupt:
		return fmt.Sprintf("corrupt download: %v", e.Err)
	default:
		return fmt.Sprintf("transient failure: %v", e.Err)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }

// StockSearcher finds fallback footage by keyword.
type StockSearcher interface {
	Search(ctx context.Context, query string, perPage int) ([]stock.Video, error)
	Configured() bool
}

// Config tunes the acquisition behaviour.
type Config struct {
	MinClips     int
	MaxClips     int
	MaxRetries   int
	RetryBackoff time.Duration
	DriveBaseURL string
}

// Service downloads primary clips and fills gaps from a stock provider.
type Service struct {
	cfg    Config
	client *http.Client
	stock  StockSearcher
	logger *infra.Logger
}

// NewService builds an acquisition service. stockClient may be nil when no
// fallback provider is configured.
func NewService(cfg Config, httpClient *http.Client, stockClient StockSearcher, logger *infra.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Service{cfg: cfg, client: httpClient, stock: stockClient, logger: logger}
}

// confirmTokenRegexp extracts the virus-scan confirmation token from the
// interstitial page Drive serves for large files.
var confirmTokenRegexp = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)

// Acquire downloads every selected clip into destDir. Individual failures are
// logged and skipped; when fewer than MinClips survive, stock footage fills
// the set up to MaxClips. An empty final set is an error.
func (s *Service) Acquire(ctx context.Context, sel *selection.Result, destDir string) ([]Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var clips []Clip
	index := 0
	for _, folder := range sel.Folders {
		for _, video := range folder.Videos {
			index++
			path := filepath.Join(destDir, fmt.Sprintf("drive_%02d_%s.mp4", index, safeName(video.Name)))
			if err := s.downloadWithRetry(ctx, video.ID, path); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.logger.Warn().
					Str("video_id", video.ID).
					Str("video_name", video.Name).
					Err(err).
					Msg("clip download failed, skipping")
				continue
			}
			clips = append(clips, Clip{Video: video, Path: path, Source: SourcePrimary})
		}
	}

	if len(clips) < s.cfg.MinClips {
		s.logger.Info().
			Int("acquired", len(clips)).
			Int("min_clips", s.cfg.MinClips).
			Msg("below minimum clip count, trying stock fallback")
		clips = s.fillFromStock(ctx, sel, destDir, clips)
	}

	if len(clips) == 0 {
		return nil, errors.New("acquire: no clips could be obtained")
	}
	return clips, nil
}

// downloadWithRetry applies the per-class retry policy: transient failures
// get MaxRetries attempts with doubling backoff, corrupt files one extra
// attempt, not-found failures none.
func (s *Service) downloadWithRetry(ctx context.Context, videoID, path string) error {
	backoff := s.cfg.RetryBackoff
	corruptRetried := false
	attempt := 0
	for {
		attempt++
		err := s.downloadDriveFile(ctx, videoID, path)
		if err == nil {
			return nil
		}
		var dlErr *DownloadError
		if !errors.As(err, &dlErr) {
			return err
		}
		switch dlErr.Class {
		case ClassNotFound:
			return err
		case ClassCorrupt:
			if corruptRetried {
				return &DownloadError{Class: ClassNotFound, Err: dlErr.Err}
			}
			corruptRetried = true
		default:
			if attempt >= s.cfg.MaxRetries {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// downloadDriveFile fetches one file by id, handling the large-file
// confirmation handshake when Drive serves an HTML interstitial.
func (s *Service) downloadDriveFile(ctx context.Context, videoID, path string) error {
	base := strings.TrimRight(s.cfg.DriveBaseURL, "/")
	rawURL := fmt.Sprintf("%s/uc?export=download&id=%s", base, url.QueryEscape(videoID))

	body, contentType, err := s.get(ctx, rawURL)
	if err != nil {
		return err
	}

	if strings.Contains(contentType, "text/html") {
		token := confirmTokenRegexp.FindSubmatch(body)
		if token == nil {
			return &DownloadError{Class: ClassNotFound, Err: errors.New("no downloadable content")}
		}
		confirmURL := fmt.Sprintf("%s&confirm=%s", rawURL, string(token[1]))
		body, contentType, err = s.get(ctx, confirmURL)
		if err != nil {
			return err
		}
		if strings.Contains(contentType, "text/html") {
			return &DownloadError{Class: ClassNotFound, Err: errors.New("confirmation handshake failed")}
		}
	}

	if len(body) == 0 {
		return &DownloadError{Class: ClassCorrupt, Err: errors.New("zero-byte response")}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("acquire: write clip: %w", err)
	}
	return nil
}

// get performs one HTTP GET and classifies failures.
func (s *Service) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("acquire: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &DownloadError{Class: ClassTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusNotFound:
		return nil, "", &DownloadError{Class: ClassNotFound, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, "", &DownloadError{Class: ClassTransient, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, "", &DownloadError{Class: ClassNotFound, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &DownloadError{Class: ClassTransient, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// fillFromStock downloads fallback footage until MaxClips is reached, using
// the selection's folder names to pick search queries.
func (s *Service) fillFromStock(ctx context.Context, sel *selection.Result, destDir string, clips []Clip) []Clip {
	if s.stock == nil || !s.stock.Configured() {
		s.logger.Warn().Msg("stock fallback not configured")
		return clips
	}
	queries := stockQueries(sel)
	needed := s.cfg.MaxClips - len(clips)
	seen := make(map[int]bool)
	for _, query := range queries {
		if needed <= 0 {
			break
		}
		results, err := s.stock.Search(ctx, query, needed)
		if err != nil {
			s.logger.Warn().Str("query", query).Err(err).Msg("stock search failed")
			continue
		}
		for _, video := range results {
			if needed <= 0 {
				break
			}
			if seen[video.ID] {
				continue
			}
			seen[video.ID] = true
			path := filepath.Join(destDir, fmt.Sprintf("clip_%02d.mp4", len(clips)+1))
			if err := s.downloadStockFile(ctx, video.URL, path); err != nil {
				s.logger.Warn().Int("stock_id", video.ID).Err(err).Msg("stock download failed")
				continue
			}
			clips = append(clips, Clip{
				Video:  catalog.VideoEntry{ID: fmt.Sprintf("pexels-%d", video.ID), Name: fmt.Sprintf("stock %d", video.ID)},
				Path:   path,
				Source: SourceFallback,
			})
			needed--
		}
	}
	return clips
}

func (s *Service) downloadStockFile(ctx context.Context, rawURL, path string) error {
	body, _, err := s.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return &DownloadError{Class: ClassCorrupt, Err: errors.New("zero-byte response")}
	}
	return os.WriteFile(path, body, 0o644)
}

// stockQueries derives the ordered fallback search queries from the selected
// folders, deduplicated, with the generic query when nothing was selected.
func stockQueries(sel *selection.Result) []string {
	var queries []string
	seen := make(map[string]bool)
	for _, folder := range sel.Folders {
		q := QueryForFolder(folder.Folder)
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		queries = append(queries, defaultQuery)
	}
	return queries
}

// safeName reduces a video name to a filename-safe token.
func safeName(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "clip"
	}
	return b.String()
}
