// Package drivemap builds the catalog document by scraping public Google
// Drive folder listings. It is an offline tool: the server only reads the
// JSON it produces.
package drivemap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
)

// File is one entry in a Drive folder listing.
type File struct {
	ID       string
	Name     string
	MimeType string
}

func (f File) IsFolder() bool {
	return strings.Contains(f.MimeType, "folder")
}

func (f File) IsVideo() bool {
	return strings.Contains(f.MimeType, "video")
}

// FolderDoc mirrors the catalog document shape the server loads.
type FolderDoc struct {
	Videos     []VideoDoc           `json:"videos,omitempty"`
	Subfolders map[string]FolderDoc `json:"subfolders,omitempty"`
}

type VideoDoc struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Scraper lists public Drive folders without API credentials.
type Scraper struct {
	baseURL string
	client  *http.Client
	logger  *infra.Logger
}

func NewScraper(baseURL string, client *http.Client, logger *infra.Logger) *Scraper {
	if baseURL == "" {
		baseURL = "https://drive.google.com"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{baseURL: strings.TrimRight(baseURL, "/"), client: client, logger: logger}
}

// entryRegexp matches the [id, name, mimeType] triples embedded in the
// folder page's bootstrap script. Drive file ids are at least 20 characters
// of the URL-safe base64 alphabet.
var entryRegexp = regexp.MustCompile(`\["([a-zA-Z0-9_-]{20,})","([^"]+)","([^"]*(?:video|folder)[^"]*)"`)

// ListFolder fetches one public folder page and extracts its entries.
func (s *Scraper) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, errors.New("drivemap: folder id is required")
	}
	pageURL := fmt.Sprintf("%s/drive/folders/%s", s.baseURL, url.PathEscape(folderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drivemap: fetch folder page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drivemap: folder page returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drivemap: read folder page: %w", err)
	}
	return parseFolderPage(body)
}

// parseFolderPage walks the page's script tags and pulls the entry triples
// out of the bootstrap data.
func parseFolderPage(html []byte) ([]File, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("drivemap: parse folder page: %w", err)
	}

	seen := make(map[string]bool)
	var files []File
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range entryRegexp.FindAllStringSubmatch(sel.Text(), -1) {
			id, name, mime := m[1], unescapeJS(m[2]), m[3]
			if seen[id] {
				continue
			}
			seen[id] = true
			files = append(files, File{ID: id, Name: name, MimeType: mime})
		}
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// unescapeJS undoes the escapes Drive applies inside its script literals.
func unescapeJS(s string) string {
	s = strings.ReplaceAll(s, `&`, "&")
	s = strings.ReplaceAll(s, `=`, "=")
	s = strings.ReplaceAll(s, `\/`, "/")
	s = strings.ReplaceAll(s, `\'`, "'")
	return s
}

// BuildDocument scrapes the root folder and its subfolders down to maxDepth
// levels and assembles the catalog document keyed by top-level folder name.
func (s *Scraper) BuildDocument(ctx context.Context, rootID string, maxDepth int) (map[string]FolderDoc, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	entries, err := s.ListFolder(ctx, rootID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]FolderDoc)
	for _, entry := range entries {
		if !entry.IsFolder() {
			continue
		}
		s.logger.Info().Str("folder", entry.Name).Str("id", entry.ID).Msg("scraping folder")
		doc, err := s.buildFolder(ctx, entry.ID, maxDepth-1)
		if err != nil {
			s.logger.Warn().Str("folder", entry.Name).Err(err).Msg("folder scrape failed, skipping")
			continue
		}
		out[entry.Name] = doc
	}
	return out, nil
}

func (s *Scraper) buildFolder(ctx context.Context, folderID string, depth int) (FolderDoc, error) {
	entries, err := s.ListFolder(ctx, folderID)
	if err != nil {
		return FolderDoc{}, err
	}
	doc := FolderDoc{}
	for _, entry := range entries {
		switch {
		case entry.IsVideo():
			doc.Videos = append(doc.Videos, VideoDoc{Name: entry.Name, ID: entry.ID})
		case entry.IsFolder() && depth > 0:
			sub, err := s.buildFolder(ctx, entry.ID, depth-1)
			if err != nil {
				s.logger.Warn().Str("folder", entry.Name).Err(err).Msg("subfolder scrape failed, skipping")
				continue
			}
			if doc.Subfolders == nil {
				doc.Subfolders = make(map[string]FolderDoc)
			}
			doc.Subfolders[entry.Name] = sub
		}
	}
	return doc, nil
}

// MarshalDocument renders the catalog document as indented JSON.
func MarshalDocument(doc map[string]FolderDoc) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
