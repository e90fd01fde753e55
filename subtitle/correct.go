package subtitle

import (
	"fmt"
	"log"
	"os"
	"strings"

	"newsclip-pipeline/types"
)

// Correct rewrites the subtitle file so segment text uses the wording of
// the reference script where the transcription drifted. Best-effort: any
// problem leaves the file untouched.
func Correct(subtitleFile, script string) {
	segments := ParseFile(subtitleFile)
	if len(segments) == 0 {
		return
	}

	scriptWords := strings.Fields(script)
	if len(scriptWords) == 0 {
		return
	}

	// Re-spell each segment from the script by consuming the same number of
	// words in order. Only safe when the transcription kept the word count
	// close to the script's.
	total := 0
	for _, seg := range segments {
		total += len(strings.Fields(seg.Text))
	}
	if diff := total - len(scriptWords); diff > 5 || diff < -5 {
		log.Printf("[subtitle] Warning: transcription word count %d differs from script %d — skipping correction", total, len(scriptWords))
		return
	}

	pos := 0
	corrected := make([]types.SubtitleSegment, len(segments))
	for i, seg := range segments {
		n := len(strings.Fields(seg.Text))
		end := pos + n
		if end > len(scriptWords) {
			end = len(scriptWords)
		}
		corrected[i] = seg
		if pos < end {
			corrected[i].Text = strings.Join(scriptWords[pos:end], " ")
		}
		pos = end
	}

	if err := writeSRT(subtitleFile, corrected); err != nil {
		log.Printf("[subtitle] Warning: correction write failed: %v", err)
	}
}

func writeSRT(path string, segments []types.SubtitleSegment) error {
	var sb strings.Builder
	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatTimecode(seg.Start), formatTimecode(seg.End)))
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func formatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	ms := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
