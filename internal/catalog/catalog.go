// Package catalog loads the nested folder/video registry that selection uses
// as its universe of candidate clips. A Catalog is immutable once loaded;
// reloads swap a whole new snapshot via Holder.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
)

// VideoEntry identifies one clip inside the catalog. Identity is the pair
// (FolderPath, ID); the same ID under a different folder is a distinct entry.
type VideoEntry struct {
	ID         string
	Name       string
	FolderPath []string
}

// FolderNode is one folder level: its own videos plus nested subfolders.
type FolderNode struct {
	Videos     []VideoEntry
	Subfolders map[string]*FolderNode
}

// Catalog is the read-only snapshot of the whole registry.
type Catalog struct {
	folders     map[string]*FolderNode
	names       []string
	flat        []VideoEntry
	videoCount  int
	folderCount int
}

type videoDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type folderDoc struct {
	Videos     []videoDoc           `json:"videos"`
	Subfolders map[string]folderDoc `json:"subfolders"`
}

// Load parses the catalog document: a mapping from folder name to an object
// holding a "videos" list of {id, name} pairs and an optional "subfolders"
// mapping of the same shape, nested to arbitrary depth. An empty document is
// a valid empty catalog; anything that does not match the shape fails with
// domain.ErrCatalogFormat.
func Load(doc []byte) (*Catalog, error) {
	c := &Catalog{folders: map[string]*FolderNode{}}
	if len(strings.TrimSpace(string(doc))) == 0 {
		return c, nil
	}

	var raw map[string]folderDoc
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFormat, err)
	}

	for name := range raw {
		c.names = append(c.names, name)
	}
	// encoding/json does not preserve object key order, so folder names are
	// sorted at every level to keep Flatten (and therefore prompt rendering)
	// stable across loads.
	sort.Strings(c.names)

	for _, name := range c.names {
		node, err := buildNode(raw[name], []string{name})
		if err != nil {
			return nil, err
		}
		c.folders[name] = node
	}

	for _, name := range c.names {
		c.walk(c.folders[name])
	}
	return c, nil
}

func buildNode(doc folderDoc, path []string) (*FolderNode, error) {
	node := &FolderNode{}
	for _, v := range doc.Videos {
		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("%w: video without name under %q", domain.ErrCatalogFormat, strings.Join(path, "/"))
		}
		entry := VideoEntry{ID: v.ID, Name: v.Name, FolderPath: append([]string(nil), path...)}
		node.Videos = append(node.Videos, entry)
	}
	if len(doc.Subfolders) > 0 {
		node.Subfolders = make(map[string]*FolderNode, len(doc.Subfolders))
		for name, sub := range doc.Subfolders {
			child, err := buildNode(sub, append(append([]string(nil), path...), name))
			if err != nil {
				return nil, err
			}
			node.Subfolders[name] = child
		}
	}
	return node, nil
}

// walk accumulates the depth-first flat view: parent before children, videos
// before subfolders at each level.
func (c *Catalog) walk(node *FolderNode) {
	c.folderCount++
	c.flat = append(c.flat, node.Videos...)
	c.videoCount += len(node.Videos)
	for _, name := range node.SubfolderNames() {
		c.walk(node.Subfolders[name])
	}
}

// SubfolderNames returns the node's subfolder names in stable (sorted) order.
func (n *FolderNode) SubfolderNames() []string {
	if len(n.Subfolders) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Subfolders))
	for name := range n.Subfolders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FolderNames returns the top-level folder names in stable order.
func (c *Catalog) FolderNames() []string {
	return c.names
}

// Folder returns the top-level node with the exact given name.
func (c *Catalog) Folder(name string) (*FolderNode, bool) {
	node, ok := c.folders[name]
	return node, ok
}

// ResolveFolder maps a loosely spelled folder name from the model reply onto
// a canonical top-level folder name: exact match first, then case-insensitive,
// then mutual substring containment.
func (c *Catalog) ResolveFolder(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if _, ok := c.folders[name]; ok {
		return name, true
	}
	lower := strings.ToLower(name)
	for _, candidate := range c.names {
		if strings.ToLower(candidate) == lower {
			return candidate, true
		}
	}
	for _, candidate := range c.names {
		cl := strings.ToLower(candidate)
		if strings.Contains(lower, cl) || strings.Contains(cl, lower) {
			return candidate, true
		}
	}
	return "", false
}

// FindVideo locates a video by ID anywhere inside the named top-level folder,
// including its subfolders.
func (c *Catalog) FindVideo(folder, id string) (VideoEntry, bool) {
	if id == "" {
		return VideoEntry{}, false
	}
	node, ok := c.folders[folder]
	if !ok {
		return VideoEntry{}, false
	}
	return findInNode(node, id)
}

func findInNode(node *FolderNode, id string) (VideoEntry, bool) {
	for _, v := range node.Videos {
		if v.ID == id {
			return v, true
		}
	}
	for _, name := range node.SubfolderNames() {
		if v, ok := findInNode(node.Subfolders[name], id); ok {
			return v, ok
		}
	}
	return VideoEntry{}, false
}

// Flatten returns every video in the catalog exactly once, depth-first with
// parents before children and videos before subfolders. The order is stable
// for a given document and is the one the selection prompt presents.
func (c *Catalog) Flatten() []VideoEntry {
	return c.flat
}

// TotalVideoCount counts videos across every depth level.
func (c *Catalog) TotalVideoCount() int {
	return c.videoCount
}

// FolderCount counts folders across every depth level.
func (c *Catalog) FolderCount() int {
	return c.folderCount
}
