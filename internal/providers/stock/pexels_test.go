package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchParsesFirstVideoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "pexels-key" {
			t.Errorf("Authorization = %q, want pexels-key", got)
		}
		if got := r.URL.Query().Get("query"); got != "hair care beautiful" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "3" {
			t.Errorf("per_page = %q, want 3", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_results": 2,
			"videos": [
				{"id": 11, "duration": 9, "video_files": [{"link": "https://cdn/a.mp4", "quality": "hd"}, {"link": "https://cdn/a-sd.mp4"}]},
				{"id": 12, "duration": 14, "video_files": []},
				{"id": 13, "duration": 7, "video_files": [{"link": "https://cdn/c.mp4"}]}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "pexels-key", BaseURL: srv.URL})
	videos, err := client.Search(context.Background(), "hair care beautiful", 3)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("len(videos) = %d, want 2 (hit without files skipped)", len(videos))
	}
	if videos[0].URL != "https://cdn/a.mp4" {
		t.Fatalf("URL = %q, want first file link", videos[0].URL)
	}
}

func TestSearchClampsPerPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "15" {
			t.Errorf("per_page = %q, want clamped 15", got)
		}
		w.Write([]byte(`{"videos": []}`))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	if _, err := client.Search(context.Background(), "q", 50); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
}

func TestSearchRequiresKey(t *testing.T) {
	client := NewClient(Options{})
	if client.Configured() {
		t.Fatal("Configured() = true without key")
	}
	if _, err := client.Search(context.Background(), "q", 1); err == nil {
		t.Fatal("expected error without api key")
	}
}
