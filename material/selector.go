package material

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"newsclip-pipeline/types"
)

// maxClipSeconds caps the duration any single material is used for.
const maxClipSeconds = 6.0

// eligible media file extensions under a taxonomy directory.
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Selector maps subtitle segments to clips under a local media root whose
// immediate subdirectories act as taxonomy labels.
type Selector struct {
	mediaRoot string
}

func NewSelector(mediaRoot string) *Selector {
	return &Selector{mediaRoot: mediaRoot}
}

// canonical folds text into a comparable form: NFD decomposition, combining
// marks stripped, lower-cased.
func canonical(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Select assigns one material per segment, cycling through terms when there
// are fewer terms than segments. Segments that cannot be served (no
// directories or no eligible files) yield no entry; an entirely empty
// result must make the assembly stage fail the task.
func (s *Selector) Select(terms []string, segments []types.SubtitleSegment) []types.MaterialInfo {
	if len(terms) == 0 || len(segments) == 0 {
		return nil
	}

	// Fresh source per call so concurrent tasks never share picks.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	subdirs := s.listSubdirs()
	log.Printf("[material] found %d taxonomy dirs under %s", len(subdirs), s.mediaRoot)
	if len(subdirs) == 0 {
		log.Printf("[material] Warning: no subdirectories under %s", s.mediaRoot)
		return nil
	}

	var selected []types.MaterialInfo
	for i, seg := range segments {
		term := terms[i%len(terms)]

		dir := s.matchDir(rng, term, subdirs)
		if dir == "" {
			dir = subdirs[rng.Intn(len(subdirs))]
			log.Printf("[material] Warning: no matching dir for term %q, using random: %s", term, dir)
		}

		file := s.pickFile(rng, filepath.Join(s.mediaRoot, dir))
		if file == "" {
			log.Printf("[material] Warning: no media files in dir %s for segment %d", dir, i)
			continue
		}

		selected = append(selected, types.MaterialInfo{
			URL:      file,
			Duration: clampDuration(seg.Duration()),
		})
		log.Printf("[material] segment %d: %s", i, file)
	}
	return selected
}

// matchDir returns a random directory whose canonical name contains any
// token of the canonical term, or "" when none match.
func (s *Selector) matchDir(rng *rand.Rand, term string, subdirs []string) string {
	tokens := strings.Fields(canonical(term))

	var matches []string
	for _, dir := range subdirs {
		nd := canonical(dir)
		for _, tok := range tokens {
			if strings.Contains(nd, tok) {
				matches = append(matches, dir)
				break
			}
		}
	}
	if len(matches) == 0 {
		return ""
	}
	return matches[rng.Intn(len(matches))]
}

func (s *Selector) listSubdirs() []string {
	entries, err := os.ReadDir(s.mediaRoot)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

func (s *Selector) pickFile(rng *rand.Rand, dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return ""
	}
	return files[rng.Intn(len(files))]
}

// clampDuration limits a material's duration to the lesser of the fixed
// ceiling and the segment's own duration, defaulting to the ceiling when
// the segment duration is unknown or non-positive.
func clampDuration(segmentDuration float64) float64 {
	if segmentDuration <= 0 || segmentDuration > maxClipSeconds {
		return maxClipSeconds
	}
	return segmentDuration
}
