package drivemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
)

func scraperLogger() *infra.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

const folderPage = `<html><head><script>
window.bootstrap = [["1A2b3C4d5E6f7G8h9I0jKLmN","brush_sarah.mp4","video\/mp4"],
["9Z8y7X6w5V4u3T2s1R0qPOnM","Coffee Pouring","application\/vnd.google-apps.folder"],
["1A2b3C4d5E6f7G8h9I0jKLmN","brush_sarah.mp4","video\/mp4"]];
</script></head><body></body></html>`

func TestParseFolderPage(t *testing.T) {
	files, err := parseFolderPage([]byte(folderPage))
	if err != nil {
		t.Fatalf("parseFolderPage: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (duplicate dropped)", len(files))
	}
	byName := map[string]File{}
	for _, f := range files {
		byName[f.Name] = f
	}
	video, ok := byName["brush_sarah.mp4"]
	if !ok || !video.IsVideo() || video.IsFolder() {
		t.Fatalf("video entry wrong: %+v", video)
	}
	if video.ID != "1A2b3C4d5E6f7G8h9I0jKLmN" {
		t.Fatalf("video id = %q", video.ID)
	}
	folder, ok := byName["Coffee Pouring"]
	if !ok || !folder.IsFolder() || folder.IsVideo() {
		t.Fatalf("folder entry wrong: %+v", folder)
	}
}

func TestParseFolderPageEmpty(t *testing.T) {
	files, err := parseFolderPage([]byte(`<html><body>nothing here</body></html>`))
	if err != nil {
		t.Fatalf("parseFolderPage: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
}

func TestBuildDocument(t *testing.T) {
	pages := map[string]string{
		"root": `<script>[["AAAAAAAAAAAAAAAAAAAAAAAA","Hair","application\/vnd.google-apps.folder"]]</script>`,
		"AAAAAAAAAAAAAAAAAAAAAAAA": `<script>
[["BBBBBBBBBBBBBBBBBBBBBBBB","brush_sarah.mp4","video\/mp4"],
["CCCCCCCCCCCCCCCCCCCCCCCC","Styling","application\/vnd.google-apps.folder"]]</script>`,
		"CCCCCCCCCCCCCCCCCCCCCCCC": `<script>[["DDDDDDDDDDDDDDDDDDDDDDDD","curl.mp4","video\/mp4"]]</script>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/drive/folders/"):]
		page, ok := pages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "<html><head>%s</head></html>", page)
	}))
	defer server.Close()

	s := NewScraper(server.URL, server.Client(), scraperLogger())
	doc, err := s.BuildDocument(context.Background(), "root", 3)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	hair, ok := doc["Hair"]
	if !ok {
		t.Fatalf("missing Hair folder in %v", doc)
	}
	if len(hair.Videos) != 1 || hair.Videos[0].Name != "brush_sarah.mp4" {
		t.Fatalf("hair videos = %+v", hair.Videos)
	}
	styling, ok := hair.Subfolders["Styling"]
	if !ok {
		t.Fatalf("missing Styling subfolder in %+v", hair.Subfolders)
	}
	if len(styling.Videos) != 1 || styling.Videos[0].ID != "DDDDDDDDDDDDDDDDDDDDDDDD" {
		t.Fatalf("styling videos = %+v", styling.Videos)
	}
}

func TestBuildDocumentDepthLimit(t *testing.T) {
	pages := map[string]string{
		"root": `<script>[["AAAAAAAAAAAAAAAAAAAAAAAA","Hair","application\/vnd.google-apps.folder"]]</script>`,
		"AAAAAAAAAAAAAAAAAAAAAAAA": `<script>[["CCCCCCCCCCCCCCCCCCCCCCCC","Styling","application\/vnd.google-apps.folder"]]</script>`,
	}
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		id := r.URL.Path[len("/drive/folders/"):]
		fmt.Fprintf(w, "<html><head>%s</head></html>", pages[id])
	}))
	defer server.Close()

	s := NewScraper(server.URL, server.Client(), scraperLogger())
	doc, err := s.BuildDocument(context.Background(), "root", 1)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if len(doc["Hair"].Subfolders) != 0 {
		t.Fatalf("depth limit ignored: %+v", doc["Hair"].Subfolders)
	}
	if hits != 2 {
		t.Fatalf("fetched %d pages, want 2 (root + Hair)", hits)
	}
}
