package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
)

const nestedDoc = `{
	"Glow Coffee": {
		"videos": [
			{"id": "gc1", "name": "coffee_pour_sarah.mp4"},
			{"id": "gc2", "name": "coffee_product_showcase.mp4"}
		],
		"subfolders": {
			"Coffee Pouring": {
				"videos": [{"id": "cp1", "name": "pour_closeup.mp4"}]
			}
		}
	},
	"Hair": {
		"videos": [{"id": "h1", "name": "brush_sarah.mp4"}]
	},
	"Others": {}
}`

func TestLoadAndFlattenVisitsEveryVideoOnce(t *testing.T) {
	c, err := Load([]byte(nestedDoc))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	flat := c.Flatten()
	if len(flat) != 4 {
		t.Fatalf("flatten length = %d, want 4", len(flat))
	}

	seen := map[string]bool{}
	for _, v := range flat {
		key := strings.Join(v.FolderPath, "/") + "|" + v.ID
		if seen[key] {
			t.Fatalf("entry %s visited twice", key)
		}
		seen[key] = true
	}

	// Depth-first, parent videos before subfolder videos, folders sorted.
	wantIDs := []string{"gc1", "gc2", "cp1", "h1"}
	for i, v := range flat {
		if v.ID != wantIDs[i] {
			t.Fatalf("flat[%d].ID = %q, want %q", i, v.ID, wantIDs[i])
		}
	}

	if got := flat[2].FolderPath; len(got) != 2 || got[0] != "Glow Coffee" || got[1] != "Coffee Pouring" {
		t.Fatalf("subfolder entry path = %v, want [Glow Coffee Coffee Pouring]", got)
	}
}

func TestCountsSpanEveryDepth(t *testing.T) {
	c, err := Load([]byte(nestedDoc))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := c.TotalVideoCount(); got != 4 {
		t.Fatalf("TotalVideoCount = %d, want 4", got)
	}
	if got := c.FolderCount(); got != 4 {
		t.Fatalf("FolderCount = %d, want 4 (3 top-level + 1 subfolder)", got)
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   ", "{}"} {
		c, err := Load([]byte(doc))
		if err != nil {
			t.Fatalf("Load(%q) returned error: %v", doc, err)
		}
		if c.TotalVideoCount() != 0 || c.FolderCount() != 0 {
			t.Fatalf("Load(%q) produced non-empty catalog", doc)
		}
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	cases := []string{
		`[]`,
		`{"Hair": {"videos": "nope"}}`,
		`{"Hair": {"videos": [{"id": "h1"}]}}`,
	}
	for _, doc := range cases {
		if _, err := Load([]byte(doc)); !errors.Is(err, domain.ErrCatalogFormat) {
			t.Fatalf("Load(%s) error = %v, want ErrCatalogFormat", doc, err)
		}
	}
}

func TestFindVideoSearchesSubfolders(t *testing.T) {
	c, err := Load([]byte(nestedDoc))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	v, ok := c.FindVideo("Glow Coffee", "cp1")
	if !ok {
		t.Fatal("FindVideo did not locate subfolder entry")
	}
	if v.Name != "pour_closeup.mp4" {
		t.Fatalf("Name = %q, want pour_closeup.mp4", v.Name)
	}

	if _, ok := c.FindVideo("Hair", "cp1"); ok {
		t.Fatal("FindVideo matched an id outside its folder")
	}
	if _, ok := c.FindVideo("Glow Coffee", ""); ok {
		t.Fatal("FindVideo matched an empty id")
	}
}

func TestResolveFolder(t *testing.T) {
	c, err := Load([]byte(nestedDoc))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Hair", "Hair", true},
		{"hair", "Hair", true},
		{"Glow Coffee folder", "Glow Coffee", true},
		{"Nails", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := c.ResolveFolder(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ResolveFolder(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHolderReplaceSwapsSnapshot(t *testing.T) {
	first, _ := Load([]byte(`{"Hair": {"videos": [{"id": "h1", "name": "a.mp4"}]}}`))
	second, _ := Load([]byte(`{}`))

	h := NewHolder(first)
	if h.Current() != first {
		t.Fatal("Current did not return initial snapshot")
	}
	h.Replace(second)
	if h.Current() != second {
		t.Fatal("Replace did not swap snapshot")
	}
	// The old snapshot stays usable for tasks that captured it.
	if first.TotalVideoCount() != 1 {
		t.Fatal("previous snapshot mutated by reload")
	}
}
