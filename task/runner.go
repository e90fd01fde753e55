package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"newsclip-pipeline/config"
	"newsclip-pipeline/content"
	"newsclip-pipeline/script"
	"newsclip-pipeline/types"
)

// Stage capabilities consumed by the runner. Production wiring uses the
// concrete implementations from the stage packages; tests substitute fakes.

type ContentSelector interface {
	Select(ctx context.Context, subject, language string) types.SourceItem
}

type MarketFetcher interface {
	Snapshot(ctx context.Context, assetID string) *types.MarketSnapshot
}

type ScriptGenerator interface {
	Generate(ctx context.Context, subject string, source types.SourceItem, marketLine string, targetSeconds int, window script.Window) (string, error)
}

type TermGenerator interface {
	Generate(ctx context.Context, subject, scriptText string, amount int) []string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceName string, rate float64, outFile string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioFile, subtitleFile string) error
}

type MaterialSelector interface {
	Select(terms []string, segments []types.SubtitleSegment) []types.MaterialInfo
}

type Assembler interface {
	Run(ctx context.Context, taskDir string, materials []types.MaterialInfo, audioFile, subtitleFile string, params types.VideoParams, report func(fraction float64)) ([]string, error)
}

// termAmount is how many search terms one script gets.
const termAmount = 5

// Runner drives the generation stages for one task and applies every state
// transition through the Manager.
type Runner struct {
	cfg *config.Config

	Manager   *Manager
	Content   ContentSelector
	Market    MarketFetcher
	Scripts   ScriptGenerator
	Terms     TermGenerator
	Voice     Synthesizer
	Subtitles Transcriber
	Materials MaterialSelector
	Assembly  Assembler

	// AudioDuration probes the synthesized audio length; injectable so
	// tests run without ffprobe.
	AudioDuration func(path string) (float64, error)

	// SubtitleCorrect aligns transcribed text with the script, best-effort.
	SubtitleCorrect func(subtitleFile, scriptText string)

	// ParseSegments reads the subtitle file into timed segments.
	ParseSegments func(path string) []types.SubtitleSegment
}

func NewRunner(cfg *config.Config, manager *Manager) *Runner {
	return &Runner{cfg: cfg, Manager: manager}
}

// TaskDir returns the artifact directory for a task id.
func (r *Runner) TaskDir(id string) string {
	return filepath.Join(r.cfg.Paths.Tasks, id)
}

// Run executes the full pipeline for an already-created task and returns
// the final video paths. Any hard stage failure marks the task failed and
// stops all further stages.
func (r *Runner) Run(ctx context.Context, id string, params types.VideoParams) ([]string, error) {
	params = params.Normalized()

	if err := r.Manager.Start(ctx, id); err != nil {
		return nil, err
	}

	taskDir := r.TaskDir(id)
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		return nil, r.fail(ctx, id, fmt.Errorf("create task dir: %w", err))
	}

	// Stage 1: content selection. Never hard-fails; an empty body means
	// generic-knowledge generation downstream.
	source := r.Content.Select(ctx, params.Subject, params.Language)

	marketLine := ""
	if r.cfg.Content.UseMarketData && r.Market != nil {
		if assetID := content.ResolveAssetID(params.Subject); assetID != "" {
			marketLine = content.MarketLine(r.Market.Snapshot(ctx, assetID))
		}
	}

	// Stage 2: script generation.
	window := script.WindowFor(params.TargetSeconds, r.cfg.Script.MinCharsPerSec, r.cfg.Script.MaxCharsPerSec)
	scriptText, err := r.Scripts.Generate(ctx, params.Subject, source, marketLine, params.TargetSeconds, window)
	if err != nil {
		return nil, r.fail(ctx, id, fmt.Errorf("generate script: %w", err))
	}

	// Stage 3: search terms. Never fails.
	termList := r.Terms.Generate(ctx, params.Subject, scriptText, termAmount)

	if err := r.saveScript(taskDir, scriptText, termList, params); err != nil {
		log.Printf("[task] Warning: could not save script.json: %v", err)
	}

	// Stage 4: audio synthesis. Missing file or zero duration is terminal.
	audioFile := filepath.Join(taskDir, "audio.mp3")
	if err := r.Voice.Synthesize(ctx, scriptText, params.VoiceName, params.VoiceRate, audioFile); err != nil {
		return nil, r.fail(ctx, id, fmt.Errorf("synthesize audio: %w", err))
	}
	audioDuration, err := r.probeAudio(audioFile)
	if err != nil {
		return nil, r.fail(ctx, id, fmt.Errorf("audio file missing or unreadable: %w", err))
	}
	if audioDuration <= 0 {
		return nil, r.fail(ctx, id, fmt.Errorf("synthesized audio has zero duration"))
	}
	log.Printf("[task] audio ready: %.1fs", audioDuration)

	// Stage 5: subtitles. Soft stage: failures degrade to no subtitle track.
	subtitleFile := ""
	if params.SubtitleEnabled && r.Subtitles != nil {
		subtitleFile = filepath.Join(taskDir, "subtitle.srt")
		if err := r.Subtitles.Transcribe(ctx, audioFile, subtitleFile); err != nil {
			log.Printf("[task] Warning: transcription failed: %v — continuing without subtitles", err)
			subtitleFile = ""
		} else if r.SubtitleCorrect != nil {
			r.SubtitleCorrect(subtitleFile, scriptText)
		}
	}

	segments := r.parseSegments(subtitleFile)
	if len(segments) == 0 {
		// No segment-level guidance: cut the audio span into fixed-length
		// pseudo-segments so material selection still has granularity.
		segments = coarseSegments(audioDuration, float64(params.ClipDuration))
		log.Printf("[task] no subtitle segments — using %d coarse segments", len(segments))
	}

	// Stage 6: material selection. An empty result set is terminal.
	materials := r.Materials.Select(termList, segments)
	if len(materials) == 0 {
		return nil, r.fail(ctx, id, fmt.Errorf("no valid materials found under media root"))
	}

	// Stage 7: assembly. Progress spans the back half of the counter, two
	// equal increments per output, 100 only after the last mux.
	_ = r.Manager.SetProgress(id, 50)
	report := func(fraction float64) {
		_ = r.Manager.SetProgress(id, 50+50*fraction)
	}
	finalPaths, err := r.Assembly.Run(ctx, taskDir, materials, audioFile, subtitleFile, params, report)
	if err != nil {
		return nil, r.fail(ctx, id, fmt.Errorf("assemble videos: %w", err))
	}

	if err := r.Manager.Complete(ctx, id, finalPaths); err != nil {
		return nil, err
	}
	log.Printf("[task] ✅ task %s complete: %v", id, finalPaths)
	return finalPaths, nil
}

// fail transitions the task to failed and passes the original error back.
func (r *Runner) fail(ctx context.Context, id string, cause error) error {
	log.Printf("[task] task %s failed: %v", id, cause)
	if err := r.Manager.Fail(ctx, id, cause.Error()); err != nil {
		log.Printf("[task] Warning: could not mark task failed: %v", err)
	}
	return cause
}

func (r *Runner) probeAudio(path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	if r.AudioDuration == nil {
		return 0, fmt.Errorf("no audio duration probe configured")
	}
	return r.AudioDuration(path)
}

func (r *Runner) parseSegments(path string) []types.SubtitleSegment {
	if path == "" || r.ParseSegments == nil {
		return nil
	}
	return r.ParseSegments(path)
}

// saveScript persists script.json: the narration text, the search terms
// and the serialized request params.
func (r *Runner) saveScript(taskDir, scriptText string, termList []string, params types.VideoParams) error {
	data, err := json.MarshalIndent(map[string]any{
		"script":       scriptText,
		"search_terms": termList,
		"params":       params,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(taskDir, "script.json"), data, 0644)
}

// coarseSegments splits a duration into consecutive clip-length spans.
func coarseSegments(totalSec, clipSec float64) []types.SubtitleSegment {
	if clipSec <= 0 {
		clipSec = 5
	}
	n := int(math.Ceil(totalSec / clipSec))
	if n < 1 {
		n = 1
	}
	segments := make([]types.SubtitleSegment, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * clipSec
		end := start + clipSec
		if end > totalSec {
			end = totalSec
		}
		segments = append(segments, types.SubtitleSegment{Start: start, End: end})
	}
	return segments
}
