package assembly

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"newsclip-pipeline/config"
	"newsclip-pipeline/types"
)

// CombineRequest describes one silent combined timeline.
type CombineRequest struct {
	Materials      []types.MaterialInfo
	OutFile        string
	WorkDir        string
	Order          []int // material indices in playback order
	TransitionMode types.TransitionMode
	MaxClipSec     float64
	Aspect         string
}

// MuxRequest describes the final mux of audio and subtitles into a
// combined timeline.
type MuxRequest struct {
	CombinedVideo string
	AudioFile     string
	SubtitleFile  string // empty disables the subtitle track
	OutFile       string
}

// Engine is the compositing capability behind the assembly pipeline.
type Engine interface {
	Combine(ctx context.Context, req CombineRequest) error
	Mux(ctx context.Context, req MuxRequest) error
}

// FFmpegEngine implements Engine by shelling out to ffmpeg/ffprobe.
type FFmpegEngine struct {
	fps      int
	threads  int
	subtitle config.SubtitlesConfig
}

func NewFFmpegEngine(cfg config.AssemblyConfig, sub config.SubtitlesConfig) *FFmpegEngine {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = 2
	}
	return &FFmpegEngine{fps: fps, threads: threads, subtitle: sub}
}

// Combine normalizes every material to a capped clip and joins them in the
// requested order, with per-clip fades or xfade slides between clips.
func (e *FFmpegEngine) Combine(ctx context.Context, req CombineRequest) error {
	if len(req.Materials) == 0 {
		return fmt.Errorf("no materials to combine")
	}

	width, height := aspectDimensions(req.Aspect)

	var clips []string
	var durations []float64
	for n, idx := range req.Order {
		m := req.Materials[idx]
		dur := m.Duration
		if req.MaxClipSec > 0 && dur > req.MaxClipSec {
			dur = req.MaxClipSec
		}
		clip := filepath.Join(req.WorkDir, fmt.Sprintf("clip-%03d.mp4", n))
		if err := e.prepareClip(ctx, m.URL, clip, dur, width, height, req.TransitionMode); err != nil {
			return fmt.Errorf("prepare clip %d: %w", n, err)
		}
		clips = append(clips, clip)
		durations = append(durations, dur)
	}

	switch req.TransitionMode {
	case types.TransitionSlideIn, types.TransitionSlideOut:
		return e.xfadeJoin(ctx, clips, durations, req.OutFile, req.TransitionMode)
	default:
		return e.concatJoin(ctx, clips, req.WorkDir, req.OutFile)
	}
}

// prepareClip trims or loops one material into a normalized silent clip.
func (e *FFmpegEngine) prepareClip(ctx context.Context, src, dst string, duration float64, width, height int, transition types.TransitionMode) error {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d",
		width, height, width, height, e.fps,
	)
	switch transition {
	case types.TransitionFadeIn:
		vf += ",fade=t=in:st=0:d=0.5"
	case types.TransitionFadeOut:
		vf += fmt.Sprintf(",fade=t=out:st=%.3f:d=0.5", duration-0.5)
	}

	args := []string{"-y"}
	if isStillImage(src) {
		args = append(args, "-loop", "1")
	}
	args = append(args,
		"-i", src,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", e.threads),
		"-an",
		dst,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg clip prep: %w", err)
	}
	return nil
}

// concatJoin joins prepared clips with the concat demuxer.
func (e *FFmpegEngine) concatJoin(ctx context.Context, clips []string, workDir, outFile string) error {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", clip))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}

// xfadeJoin chains clips with sliding transitions.
func (e *FFmpegEngine) xfadeJoin(ctx context.Context, clips []string, durations []float64, outFile string, mode types.TransitionMode) error {
	if len(clips) == 1 {
		return copyFile(clips[0], outFile)
	}

	const xfadeDur = 0.5
	slide := "slideleft"
	if mode == types.TransitionSlideOut {
		slide = "slideright"
	}

	args := []string{"-y"}
	for _, clip := range clips {
		args = append(args, "-i", clip)
	}

	var filter strings.Builder
	prev := "[0:v]"
	offset := 0.0
	for i := 1; i < len(clips); i++ {
		offset += durations[i-1] - xfadeDur
		out := fmt.Sprintf("[v%d]", i)
		if i == len(clips)-1 {
			out = "[vout]"
		}
		filter.WriteString(fmt.Sprintf("%s[%d:v]xfade=transition=%s:duration=%.2f:offset=%.3f%s;",
			prev, i, slide, xfadeDur, offset, out))
		prev = fmt.Sprintf("[v%d]", i)
	}

	args = append(args,
		"-filter_complex", strings.TrimSuffix(filter.String(), ";"),
		"-map", "[vout]",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg xfade: %w", err)
	}
	return nil
}

// Mux attaches the narration audio and, when a subtitle file is given,
// burns the subtitle track into the combined video.
func (e *FFmpegEngine) Mux(ctx context.Context, req MuxRequest) error {
	args := []string{"-y",
		"-i", req.CombinedVideo,
		"-i", req.AudioFile,
	}

	if req.SubtitleFile != "" {
		filter := fmt.Sprintf(
			"subtitles=%s:force_style='FontName=%s,FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=%.0f,Alignment=2,MarginV=%d'",
			escapeSubtitlePath(req.SubtitleFile),
			e.subtitle.Font,
			e.subtitle.FontSize,
			e.subtitle.StrokeWidth,
			e.subtitle.MarginBottom,
		)
		args = append(args, "-vf", filter, "-c:v", "libx264", "-preset", "fast", "-crf", "20")
	} else {
		args = append(args, "-c:v", "copy")
	}

	args = append(args,
		"-map", "0:v",
		"-map", "1:a",
		"-c:a", "aac",
		"-shortest",
		req.OutFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

func aspectDimensions(aspect string) (int, int) {
	switch aspect {
	case "16:9":
		return 1920, 1080
	case "1:1":
		return 1080, 1080
	default: // vertical shorts
		return 1080, 1920
	}
}

func isStillImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// escapeSubtitlePath escapes colons and backslashes for the ffmpeg
// subtitles filter.
func escapeSubtitlePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
