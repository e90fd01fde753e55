package assembly

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"newsclip-pipeline/types"
)

// fakeEngine records Combine/Mux calls and can fail a specific call.
type fakeEngine struct {
	combines []CombineRequest
	muxes    []MuxRequest

	failCombineAt int // 1-based output index, 0 = never
	failMuxAt     int
}

func (f *fakeEngine) Combine(_ context.Context, req CombineRequest) error {
	f.combines = append(f.combines, req)
	if f.failCombineAt > 0 && len(f.combines) == f.failCombineAt {
		return errors.New("combine boom")
	}
	return nil
}

func (f *fakeEngine) Mux(_ context.Context, req MuxRequest) error {
	f.muxes = append(f.muxes, req)
	if f.failMuxAt > 0 && len(f.muxes) == f.failMuxAt {
		return errors.New("mux boom")
	}
	return nil
}

func testMaterials(n int) []types.MaterialInfo {
	var mats []types.MaterialInfo
	for i := 0; i < n; i++ {
		mats = append(mats, types.MaterialInfo{URL: "clip.mp4", Duration: 4})
	}
	return mats
}

func TestRunProducesFinalPathsAndProgress(t *testing.T) {
	eng := &fakeEngine{}
	p := NewPipeline(eng)
	dir := t.TempDir()

	var fractions []float64
	params := types.VideoParams{VideoCount: 2}.Normalized()

	paths, err := p.Run(context.Background(), dir, testMaterials(3), "audio.mp3", "subtitle.srt", params, func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		filepath.Join(dir, "final-1.mp4"),
		filepath.Join(dir, "final-2.mp4"),
	}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	// Two half-increments per output: 0.25, 0.5, 0.75, 1.0.
	wantFr := []float64{0.25, 0.5, 0.75, 1.0}
	if len(fractions) != len(wantFr) {
		t.Fatalf("fractions = %v, want %v", fractions, wantFr)
	}
	for i := range wantFr {
		if fractions[i] != wantFr[i] {
			t.Fatalf("fractions[%d] = %v, want %v", i, fractions[i], wantFr[i])
		}
	}

	if len(eng.combines) != 2 || len(eng.muxes) != 2 {
		t.Fatalf("combines=%d muxes=%d, want 2/2", len(eng.combines), len(eng.muxes))
	}
	if got := eng.muxes[0].CombinedVideo; !strings.HasSuffix(got, "combined-1.mp4") {
		t.Fatalf("mux 1 input = %q, want combined-1.mp4", got)
	}
	if got := eng.muxes[1].AudioFile; got != "audio.mp3" {
		t.Fatalf("mux audio = %q", got)
	}
}

func TestRunSingleOutputKeepsSequentialOrder(t *testing.T) {
	eng := &fakeEngine{}
	p := NewPipeline(eng)

	params := types.VideoParams{VideoCount: 1, ConcatMode: types.ConcatSequential}.Normalized()
	if _, err := p.Run(context.Background(), t.TempDir(), testMaterials(4), "a.mp3", "", params, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	order := eng.combines[0].Order
	for i, idx := range order {
		if idx != i {
			t.Fatalf("order = %v, want sequential", order)
		}
	}
}

func TestRunEmptyMaterials(t *testing.T) {
	p := NewPipeline(&fakeEngine{})
	_, err := p.Run(context.Background(), t.TempDir(), nil, "a.mp3", "", types.VideoParams{}.Normalized(), nil)
	if err == nil {
		t.Fatal("Run with no materials should fail")
	}
}

func TestRunCombineFailureAborts(t *testing.T) {
	eng := &fakeEngine{failCombineAt: 1}
	p := NewPipeline(eng)

	var fractions []float64
	params := types.VideoParams{VideoCount: 2}.Normalized()
	_, err := p.Run(context.Background(), t.TempDir(), testMaterials(2), "a.mp3", "", params, func(f float64) {
		fractions = append(fractions, f)
	})
	if err == nil {
		t.Fatal("Run should fail on combine error")
	}
	if len(eng.muxes) != 0 {
		t.Fatalf("mux called %d times after combine failure", len(eng.muxes))
	}
	if len(fractions) != 0 {
		t.Fatalf("fractions = %v, want none before first success", fractions)
	}
}

func TestRunMuxFailureAborts(t *testing.T) {
	eng := &fakeEngine{failMuxAt: 2}
	p := NewPipeline(eng)

	var last float64
	params := types.VideoParams{VideoCount: 2}.Normalized()
	_, err := p.Run(context.Background(), t.TempDir(), testMaterials(2), "a.mp3", "", params, func(f float64) {
		last = f
	})
	if err == nil {
		t.Fatal("Run should fail on mux error")
	}
	if last >= 1.0 {
		t.Fatalf("progress reached %v despite mux failure", last)
	}
}

func TestPlaybackOrderCoversAllIndices(t *testing.T) {
	order := playbackOrder(5, types.ConcatRandom, rand.New(rand.NewSource(1)))
	if len(order) != 5 {
		t.Fatalf("len = %d", len(order))
	}
	seen := make(map[int]bool)
	for _, idx := range order {
		seen[idx] = true
	}
	if len(seen) != 5 {
		t.Fatalf("order = %v, want a permutation of 0..4", order)
	}
}
