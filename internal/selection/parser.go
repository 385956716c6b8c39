package selection

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
)

const (
	folderMarker  = "FOLDER:"
	videoMarker   = "VIDEO:"
	actressMarker = "ACTRESS:"
)

// parseReply applies the line-oriented reply grammar. The model's output is
// not contractually fixed, so parsing degrades to partial results: unknown
// folders and unknown (folder, id) pairs are dropped with a warning, and any
// unrecognized line is skipped. If no valid video survives, the folder list
// is cleared so acquisition falls back to the secondary source.
func parseReply(raw string, c *catalog.Catalog, logger zerolog.Logger) *Result {
	res := &Result{RawResponse: raw}

	// currentFolder is the canonical name of the most recently opened
	// folder; empty while the open folder was unknown, so its VIDEO lines
	// drop with it.
	currentFolder := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, folderMarker):
			name := strings.TrimSpace(strings.TrimPrefix(line, folderMarker))
			canonical, ok := c.ResolveFolder(name)
			if !ok {
				logger.Warn().Str("folder", name).Msg("selection: reply names unknown folder, dropping")
				currentFolder = ""
				continue
			}
			currentFolder = canonical

		case strings.HasPrefix(line, videoMarker):
			if currentFolder == "" {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, videoMarker))
			name, id := splitVideoLine(payload)
			entry, ok := c.FindVideo(currentFolder, id)
			if !ok {
				logger.Warn().
					Str("folder", currentFolder).
					Str("video", name).
					Str("id", id).
					Msg("selection: reply names unknown video, dropping line")
				continue
			}
			if res.contains(currentFolder, entry.ID) {
				continue
			}
			res.appendVideo(currentFolder, entry)

		case strings.HasPrefix(line, actressMarker):
			token := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, actressMarker)))
			if token != "" && token != "none" {
				res.Actress = token
			}
		}
	}

	if res.VideoCount() == 0 {
		// Whole result is empty; keep a detected actress token so the
		// consistency pass can still enrich from the catalog.
		res.Folders = nil
	}
	return res
}

// splitVideoLine parses the "name|id" payload of a VIDEO line. A missing id
// yields an empty string, which never matches a catalog entry.
func splitVideoLine(payload string) (name, id string) {
	if i := strings.Index(payload, "|"); i >= 0 {
		return strings.TrimSpace(payload[:i]), strings.TrimSpace(payload[i+1:])
	}
	return strings.TrimSpace(payload), ""
}
