package assembly

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"newsclip-pipeline/types"
)

// Pipeline combines selected materials into one timeline per requested
// output and muxes narration audio and subtitles into the final artifacts.
type Pipeline struct {
	engine Engine
}

func NewPipeline(engine Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// Run produces combined-{n}.mp4 and final-{n}.mp4 (1-based) under taskDir
// for every requested output and returns the final paths. report receives
// the fraction of assembly work done in two equal increments per output,
// reaching 1.0 only after the last output's final mux. Any combine or mux
// failure aborts the whole batch.
func (p *Pipeline) Run(ctx context.Context, taskDir string, materials []types.MaterialInfo, audioFile, subtitleFile string, params types.VideoParams, report func(fraction float64)) ([]string, error) {
	if len(materials) == 0 {
		return nil, fmt.Errorf("no materials available for assembly")
	}
	if report == nil {
		report = func(float64) {}
	}

	count := params.VideoCount
	if count < 1 {
		count = 1
	}

	// Multi-output batches get randomized ordering so the outputs differ.
	concatMode := params.ConcatMode
	if count > 1 {
		concatMode = types.ConcatRandom
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var finalPaths []string
	halfSteps := 0
	total := float64(2 * count)

	for i := 0; i < count; i++ {
		index := i + 1

		workDir := filepath.Join(taskDir, fmt.Sprintf("work-%d", index))
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, err
		}

		combinedPath := filepath.Join(taskDir, fmt.Sprintf("combined-%d.mp4", index))
		log.Printf("[assembly] combining video %d => %s", index, combinedPath)

		err := p.engine.Combine(ctx, CombineRequest{
			Materials:      materials,
			OutFile:        combinedPath,
			WorkDir:        workDir,
			Order:          playbackOrder(len(materials), concatMode, rng),
			TransitionMode: params.TransitionMode,
			MaxClipSec:     float64(params.ClipDuration),
			Aspect:         params.Aspect,
		})
		if err != nil {
			return nil, fmt.Errorf("combine output %d: %w", index, err)
		}
		halfSteps++
		report(float64(halfSteps) / total)

		finalPath := filepath.Join(taskDir, fmt.Sprintf("final-%d.mp4", index))
		log.Printf("[assembly] generating video %d => %s", index, finalPath)

		err = p.engine.Mux(ctx, MuxRequest{
			CombinedVideo: combinedPath,
			AudioFile:     audioFile,
			SubtitleFile:  subtitleFile,
			OutFile:       finalPath,
		})
		if err != nil {
			return nil, fmt.Errorf("mux output %d: %w", index, err)
		}
		halfSteps++
		report(float64(halfSteps) / total)

		finalPaths = append(finalPaths, finalPath)
	}

	log.Printf("[assembly] ✅ %d video(s) ready", len(finalPaths))
	return finalPaths, nil
}

// playbackOrder returns material indices either in sequence or shuffled.
func playbackOrder(n int, mode types.ConcatMode, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if mode == types.ConcatRandom {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}
