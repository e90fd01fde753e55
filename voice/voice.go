package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Synthesizer turns narration text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceName string, rate float64, outFile string) error
}

// ParseVoiceName strips the display-only gender suffix from a voice
// selector like "en-US-GuyNeural-Male".
func ParseVoiceName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "-Female")
	name = strings.TrimSuffix(name, "-Male")
	return name
}

// EdgeTTS shells out to the edge-tts CLI.
type EdgeTTS struct {
	defaultVoice string
}

func NewEdgeTTS(defaultVoice string) *EdgeTTS {
	if defaultVoice == "" {
		defaultVoice = "en-US-GuyNeural"
	}
	return &EdgeTTS{defaultVoice: defaultVoice}
}

// Synthesize writes spoken audio for text to outFile, retrying transient
// CLI failures a few times.
func (e *EdgeTTS) Synthesize(ctx context.Context, text, voiceName string, rate float64, outFile string) error {
	voice := ParseVoiceName(voiceName)
	if voice == "" {
		voice = e.defaultVoice
	}

	args := []string{
		"--voice", voice,
		"--text", text,
		"--write-media", outFile,
	}
	if rate > 0 && rate != 1.0 {
		args = append(args, "--rate", ratePercent(rate))
	}

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := exec.CommandContext(ctx, "edge-tts", args...)
		cmd.Stderr = os.Stderr
		if err = cmd.Run(); err == nil {
			return nil
		}
		log.Printf("[voice] TTS attempt %d failed: %v — retrying...", attempt, err)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return fmt.Errorf("tts failed: %w", err)
}

// ratePercent converts a 1.0-relative rate into edge-tts "+NN%" form.
func ratePercent(rate float64) string {
	pct := int((rate - 1.0) * 100)
	return fmt.Sprintf("%+d%%", pct)
}

// Duration returns the audio file length in seconds via ffprobe.
func Duration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}
