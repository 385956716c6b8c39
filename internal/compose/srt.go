// Package compose turns acquired clips, narration audio, and a script into
// the final vertical video by driving an external ffmpeg binary.
package compose

import (
	"fmt"
	"os"
	"strings"
)

// WordTiming assigns one word of the script a window inside the narration.
type WordTiming struct {
	Word  string
	Start float64
	End   float64
}

// pause lengths appended after punctuated words, in estimation units.
const (
	sentencePause = 0.3
	clausePause   = 0.15
)

// estimateWordTimings spreads the script's words across the narration
// duration, weighting each word by an estimated syllable count and adding
// pauses after punctuation, then normalizing so the last word ends exactly at
// the audio's end.
func estimateWordTimings(script string, audioDuration float64) []WordTiming {
	words := strings.Fields(script)
	if len(words) == 0 || audioDuration <= 0 {
		return nil
	}

	weights := make([]float64, len(words))
	var total float64
	for i, word := range words {
		w := float64(countSyllables(word)) * 0.25
		if w < 0.2 {
			w = 0.2
		}
		switch {
		case strings.ContainsAny(word, ".!?"):
			w += sentencePause
		case strings.ContainsAny(word, ",;:"):
			w += clausePause
		}
		weights[i] = w
		total += w
	}

	scale := audioDuration / total
	timings := make([]WordTiming, len(words))
	cursor := 0.0
	for i, word := range words {
		d := weights[i] * scale
		timings[i] = WordTiming{Word: word, Start: cursor, End: cursor + d}
		cursor += d
	}
	// pin the tail to the exact duration despite float drift
	timings[len(timings)-1].End = audioDuration
	return timings
}

// countSyllables estimates syllables by counting vowel groups, minimum one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if count < 1 {
		count = 1
	}
	return count
}

// BuildSRT renders one caption per word in SubRip format.
func BuildSRT(timings []WordTiming) string {
	var b strings.Builder
	for i, t := range timings {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, formatSRTTime(t.Start), formatSRTTime(t.End), cleanCaption(t.Word))
	}
	return b.String()
}

// WriteSRT writes the caption file for a script at the given path.
func WriteSRT(path, script string, audioDuration float64) error {
	timings := estimateWordTimings(script, audioDuration)
	if len(timings) == 0 {
		return fmt.Errorf("compose: nothing to caption")
	}
	return os.WriteFile(path, []byte(BuildSRT(timings)), 0o644)
}

// cleanCaption strips trailing punctuation so single-word captions read
// cleanly on screen.
func cleanCaption(word string) string {
	return strings.TrimRight(word, ".,;:!?")
}

// formatSRTTime renders seconds as HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int(seconds*1000 + 0.5)
	h := totalMillis / 3600000
	m := (totalMillis % 3600000) / 60000
	s := (totalMillis % 60000) / 1000
	ms := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
