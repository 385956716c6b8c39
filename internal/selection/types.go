// Package selection turns a narration transcription plus a catalog snapshot
// into a concrete list of clips to acquire, using an external generative
// model and a filename-based performer consistency pass.
package selection

import "github.com/Shaheer-Khan1/AdGenerator/internal/catalog"

// Request is the immutable input to one selection run.
type Request struct {
	Transcription string
	Catalog       *catalog.Catalog
}

// FolderSelection holds the chosen videos for one top-level catalog folder,
// in the order they should appear in the composed video.
type FolderSelection struct {
	Folder string
	Videos []catalog.VideoEntry
}

// Result is the outcome of a selection run. RawResponse keeps the model's
// unparsed reply for diagnostics regardless of how parsing went.
type Result struct {
	Folders     []FolderSelection
	Actress     string
	RawResponse string
}

// VideoCount returns the number of selected videos across all folders.
func (r *Result) VideoCount() int {
	n := 0
	for _, f := range r.Folders {
		n += len(f.Videos)
	}
	return n
}

// Empty reports whether no videos were selected, which sends acquisition to
// the fallback source.
func (r *Result) Empty() bool {
	return r == nil || r.VideoCount() == 0
}

// FolderNames lists the selected folder names in order.
func (r *Result) FolderNames() []string {
	names := make([]string, 0, len(r.Folders))
	for _, f := range r.Folders {
		names = append(names, f.Folder)
	}
	return names
}

func (r *Result) contains(folder, id string) bool {
	for _, f := range r.Folders {
		if f.Folder != folder {
			continue
		}
		for _, v := range f.Videos {
			if v.ID == id {
				return true
			}
		}
	}
	return false
}

func (r *Result) appendVideo(folder string, v catalog.VideoEntry) {
	for i := range r.Folders {
		if r.Folders[i].Folder == folder {
			r.Folders[i].Videos = append(r.Folders[i].Videos, v)
			return
		}
	}
	r.Folders = append(r.Folders, FolderSelection{Folder: folder, Videos: []catalog.VideoEntry{v}})
}
