package acquire

import "strings"

// folderQueries maps catalog folder names to stock-footage search queries
// used when the primary source cannot supply enough clips.
var folderQueries = map[string]string{
	"Cellulite":   "cellulite treatment beauty",
	"Glow Coffee": "coffee beauty skin glow",
	"Hair":        "hair care beautiful",
	"Joints":      "joint health wellness",
	"Menopause":   "menopause health women",
	"Nails":       "nail care manicure",
	"Others":      "beauty wellness",
	"Product":     "beauty product cosmetics",
	"Wrinkles":    "anti aging wrinkles skincare",
}

const defaultQuery = "beauty wellness"

// QueryForFolder returns the stock search query for a folder name. Lookup is
// exact first, then case-insensitive; unmatched folders get the generic query.
func QueryForFolder(name string) string {
	if q, ok := folderQueries[name]; ok {
		return q
	}
	for folder, q := range folderQueries {
		if strings.EqualFold(folder, name) {
			return q
		}
	}
	return defaultQuery
}
