package selection

import (
	"strings"
	"unicode"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
)

// productionStoplist holds generic production words that are never performer
// names. Folder names along an entry's path are added on top of this list.
var productionStoplist = []string{
	"video", "clip", "footage", "scene", "shot", "product",
	"intro", "outro", "closeup", "final", "main", "raw",
}

// InferActressToken derives a candidate performer identifier from a filename.
// The stem is split on non-alphanumeric separators, the extension and
// stoplisted words are discarded, and the longest remaining contiguous run of
// one or two alphabetic tokens is returned lowercased. Best effort: a false
// positive only enriches the selection, it never blocks it.
func InferActressToken(filename string, stoplist []string) string {
	stem := filename
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}

	blocked := make(map[string]bool, len(productionStoplist)+len(stoplist))
	for _, w := range productionStoplist {
		blocked[strings.ToLower(w)] = true
	}
	for _, w := range stoplist {
		for _, part := range splitTokens(w) {
			blocked[strings.ToLower(part)] = true
		}
	}

	var best []string
	var run []string
	flush := func() {
		if len(run) > 2 {
			run = run[:2]
		}
		if joinedLen(run) > joinedLen(best) {
			best = run
		}
		run = nil
	}
	for _, tok := range splitTokens(stem) {
		lower := strings.ToLower(tok)
		if blocked[lower] || !isAlphabetic(tok) {
			flush()
			continue
		}
		run = append(run, lower)
	}
	flush()

	return strings.Join(best, " ")
}

// tokenMatchesFilename reports whether every word of the token appears in the
// filename as a delimited substring: "sarah" matches "pour_sarah.mp4" but not
// "sarahsomethingelse.mp4".
func tokenMatchesFilename(filename, token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	words := map[string]bool{}
	for _, t := range splitTokens(strings.ToLower(filename)) {
		words[t] = true
	}
	for _, w := range strings.Fields(token) {
		if !words[w] {
			return false
		}
	}
	return true
}

// applyConsistencyPass appends every catalog entry whose filename matches the
// actress token and is not already selected, after the model's own picks and
// in catalog flatten order. This keeps the on-screen performer consistent
// across folders even when the model missed some of their clips.
func applyConsistencyPass(res *Result, c *catalog.Catalog) int {
	if res.Actress == "" {
		return 0
	}
	added := 0
	for _, entry := range c.Flatten() {
		if !tokenMatchesFilename(entry.Name, res.Actress) {
			continue
		}
		folder := entry.FolderPath[0]
		if res.contains(folder, entry.ID) {
			continue
		}
		res.appendVideo(folder, entry)
		added++
	}
	return added
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func joinedLen(tokens []string) int {
	n := 0
	for _, t := range tokens {
		n += len(t)
	}
	return n
}
