package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/stock"
	"github.com/Shaheer-Khan1/AdGenerator/internal/selection"
)

func testLogger() *infra.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type fakeStock struct {
	videos  []stock.Video
	queries []string
	err     error
}

func (f *fakeStock) Search(_ context.Context, query string, perPage int) ([]stock.Video, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if perPage < len(f.videos) {
		return f.videos[:perPage], nil
	}
	return f.videos, nil
}

func (f *fakeStock) Configured() bool { return true }

func selectionWith(folder string, videos ...catalog.VideoEntry) *selection.Result {
	return &selection.Result{Folders: []selection.FolderSelection{{Folder: folder, Videos: videos}}}
}

func newService(t *testing.T, serverURL string, stockClient StockSearcher, cfg Config) *Service {
	t.Helper()
	cfg.DriveBaseURL = serverURL
	if cfg.MinClips == 0 {
		cfg.MinClips = 2
	}
	if cfg.MaxClips == 0 {
		cfg.MaxClips = 5
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	return NewService(cfg, &http.Client{Timeout: 5 * time.Second}, stockClient, testLogger())
}

func TestAcquireRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, "clip-bytes")
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 1})
	sel := selectionWith("Hair", catalog.VideoEntry{ID: "h1", Name: "brush.mp4"})

	clips, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
	if attempts != 3 {
		t.Fatalf("got %d attempts, want 3", attempts)
	}
	if clips[0].Source != SourcePrimary {
		t.Fatalf("got source %q, want %q", clips[0].Source, SourcePrimary)
	}
}

func TestAcquireDropsNotFoundWithoutRetry(t *testing.T) {
	attempts := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		attempts[id]++
		if id == "gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, "clip-bytes")
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 1})
	sel := selectionWith("Hair",
		catalog.VideoEntry{ID: "gone", Name: "missing.mp4"},
		catalog.VideoEntry{ID: "h2", Name: "shine.mp4"},
	)

	clips, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
	if clips[0].Video.ID != "h2" {
		t.Fatalf("got clip %q, want h2", clips[0].Video.ID)
	}
	if attempts["gone"] != 1 {
		t.Fatalf("not-found clip attempted %d times, want 1", attempts["gone"])
	}
}

func TestAcquireRetriesCorruptDownloadOnce(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "video/mp4")
		// always empty body
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 1})
	sel := selectionWith("Hair", catalog.VideoEntry{ID: "h1", Name: "brush.mp4"})

	_, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err == nil {
		t.Fatal("expected error when every download is empty")
	}
	if attempts != 2 {
		t.Fatalf("got %d attempts, want 2 (one retry for corrupt file)", attempts)
	}
}

func TestAcquireConfirmationHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") == "tok123" {
			w.Header().Set("Content-Type", "video/mp4")
			fmt.Fprint(w, "large-clip-bytes")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><a href="/uc?export=download&confirm=tok123&id=h1">Download anyway</a></html>`)
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 1})
	sel := selectionWith("Hair", catalog.VideoEntry{ID: "h1", Name: "brush.mp4"})

	clips, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
}

func TestAcquireFallsBackToStockBelowMinimum(t *testing.T) {
	driveCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/uc", func(w http.ResponseWriter, r *http.Request) {
		driveCalls++
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/stock/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, "stock-bytes")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	stockClient := &fakeStock{videos: []stock.Video{
		{ID: 101, URL: server.URL + "/stock/101"},
		{ID: 102, URL: server.URL + "/stock/102"},
		{ID: 103, URL: server.URL + "/stock/103"},
	}}

	svc := newService(t, server.URL, stockClient, Config{MinClips: 2, MaxClips: 3})
	sel := selectionWith("Hair", catalog.VideoEntry{ID: "h1", Name: "brush.mp4"})

	clips, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("got %d clips, want 3 from fallback", len(clips))
	}
	for i, clip := range clips {
		if clip.Source != SourceFallback {
			t.Fatalf("clip %d source = %q, want %q", i, clip.Source, SourceFallback)
		}
	}
	if len(stockClient.queries) == 0 || stockClient.queries[0] != "hair care beautiful" {
		t.Fatalf("got stock queries %v, want folder query first", stockClient.queries)
	}
}

func TestAcquirePreservesSelectionOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, "clip-bytes")
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 1})
	sel := &selection.Result{Folders: []selection.FolderSelection{
		{Folder: "Hair", Videos: []catalog.VideoEntry{
			{ID: "h1", Name: "first.mp4"},
			{ID: "h2", Name: "second.mp4"},
		}},
		{Folder: "Product", Videos: []catalog.VideoEntry{
			{ID: "p1", Name: "third.mp4"},
		}},
	}}

	clips, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	wantOrder := []string{"h1", "h2", "p1"}
	if len(clips) != len(wantOrder) {
		t.Fatalf("got %d clips, want %d", len(clips), len(wantOrder))
	}
	for i, want := range wantOrder {
		if clips[i].Video.ID != want {
			t.Fatalf("clip %d = %q, want %q", i, clips[i].Video.ID, want)
		}
	}
}

func TestAcquireErrorsWhenNothingObtained(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newService(t, server.URL, nil, Config{MinClips: 2})
	sel := selectionWith("Hair", catalog.VideoEntry{ID: "h1", Name: "brush.mp4"})

	_, err := svc.Acquire(context.Background(), sel, t.TempDir())
	if err == nil {
		t.Fatal("expected error when no clips could be obtained")
	}
}

func TestQueryForFolder(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Hair", "hair care beautiful"},
		{"hair", "hair care beautiful"},
		{"Glow Coffee", "coffee beauty skin glow"},
		{"Unknown Folder", defaultQuery},
		{"", defaultQuery},
	}
	for _, tt := range tests {
		if got := QueryForFolder(tt.name); got != tt.want {
			t.Fatalf("QueryForFolder(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStockQueriesDeduplicates(t *testing.T) {
	sel := &selection.Result{Folders: []selection.FolderSelection{
		{Folder: "Hair"},
		{Folder: "hair"},
		{Folder: "Product"},
	}}
	got := stockQueries(sel)
	want := []string{"hair care beautiful", "beauty product cosmetics"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
