package material

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsclip-pipeline/types"
)

// buildMediaRoot creates a media root with the given dir -> files layout.
func buildMediaRoot(t *testing.T, layout map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, files := range layout {
		full := filepath.Join(root, dir)
		if err := os.MkdirAll(full, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for _, f := range files {
			if err := os.WriteFile(filepath.Join(full, f), []byte("x"), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
	return root
}

func segmentsOf(durations ...float64) []types.SubtitleSegment {
	var segs []types.SubtitleSegment
	start := 0.0
	for _, d := range durations {
		segs = append(segs, types.SubtitleSegment{Start: start, End: start + d})
		start += d
	}
	return segs
}

func TestSelectMatchesTermTokensToDirs(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{
		"bitcoin-charts": {"a.mp4"},
		"city":           {"b.mp4"},
	})
	s := NewSelector(root)

	got := s.Select([]string{"bitcoin price"}, segmentsOf(2))
	if len(got) != 1 {
		t.Fatalf("materials = %d, want 1", len(got))
	}
	if !strings.Contains(got[0].URL, "bitcoin-charts") {
		t.Fatalf("url = %q, want pick from bitcoin-charts", got[0].URL)
	}
}

func TestSelectNormalizesDiacritics(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{
		"Café-Scenes": {"a.mp4"},
		"other":       {"b.mp4"},
	})
	s := NewSelector(root)

	got := s.Select([]string{"cafe interior"}, segmentsOf(2))
	if len(got) != 1 || !strings.Contains(got[0].URL, "Café-Scenes") {
		t.Fatalf("materials = %+v, want pick from Café-Scenes", got)
	}
}

func TestSelectRandomFallbackWhenNoMatch(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{
		"alpha": {"a.mp4"},
		"beta":  {"b.jpg"},
	})
	s := NewSelector(root)

	got := s.Select([]string{"zzz-unmatchable"}, segmentsOf(2, 3))
	if len(got) != 2 {
		t.Fatalf("materials = %d, want 2 (random fallback)", len(got))
	}
}

func TestSelectCyclesTerms(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{
		"alpha": {"a.mp4"},
		"beta":  {"b.mp4"},
	})
	s := NewSelector(root)

	// Two terms, five segments: terms cycle, every segment gets a material.
	got := s.Select([]string{"alpha", "beta"}, segmentsOf(1, 1, 1, 1, 1))
	if len(got) != 5 {
		t.Fatalf("materials = %d, want 5", len(got))
	}
}

func TestSelectClampsDuration(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{"clips": {"a.mp4"}})
	s := NewSelector(root)

	segs := []types.SubtitleSegment{
		{Start: 0, End: 2.5},  // shorter than ceiling
		{Start: 2.5, End: 15}, // longer than ceiling
		{Start: 15, End: 15},  // degenerate
	}
	got := s.Select([]string{"clips"}, segs)
	if len(got) != 3 {
		t.Fatalf("materials = %d, want 3", len(got))
	}
	for i, m := range got {
		if m.Duration > maxClipSeconds {
			t.Fatalf("materials[%d].Duration = %.2f > ceiling", i, m.Duration)
		}
		if d := segs[i].Duration(); d > 0 && m.Duration > d {
			t.Fatalf("materials[%d].Duration = %.2f > segment %.2f", i, m.Duration, d)
		}
	}
	if got[0].Duration != 2.5 {
		t.Fatalf("short segment duration = %.2f, want 2.5", got[0].Duration)
	}
	if got[2].Duration != maxClipSeconds {
		t.Fatalf("degenerate segment duration = %.2f, want ceiling", got[2].Duration)
	}
}

func TestSelectIgnoresIneligibleFiles(t *testing.T) {
	root := buildMediaRoot(t, map[string][]string{
		"clips": {"notes.txt", "readme.md"},
	})
	s := NewSelector(root)

	if got := s.Select([]string{"clips"}, segmentsOf(2)); len(got) != 0 {
		t.Fatalf("materials = %+v, want none", got)
	}
}

func TestSelectEmptyRoot(t *testing.T) {
	s := NewSelector(t.TempDir())
	if got := s.Select([]string{"x"}, segmentsOf(2)); got != nil {
		t.Fatalf("materials = %v, want nil", got)
	}

	s = NewSelector("/nonexistent-media-root")
	if got := s.Select([]string{"x"}, segmentsOf(2)); got != nil {
		t.Fatalf("materials = %v, want nil", got)
	}
}

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"Café":    "cafe",
		"BITCOIN": "bitcoin",
		"Naïve":   "naive",
	}
	for in, want := range cases {
		if got := canonical(in); got != want {
			t.Fatalf("canonical(%q) = %q, want %q", in, got, want)
		}
	}
}
