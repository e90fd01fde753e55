package subtitle

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcriber produces an SRT file from narration audio using the whisper
// CLI.
type Transcriber struct {
	model string
}

func NewTranscriber(model string) *Transcriber {
	if model == "" {
		model = "base"
	}
	return &Transcriber{model: model}
}

// Transcribe runs whisper over the audio file and writes subtitleFile.
func (t *Transcriber) Transcribe(ctx context.Context, audioFile, subtitleFile string) error {
	log.Println("[subtitle] Running Whisper transcription...")

	outputDir := filepath.Dir(subtitleFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx,
		"whisper",
		audioFile,
		"--model", t.model,
		"--output_format", "srt",
		"--output_dir", outputDir,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("whisper failed: %w", err)
	}

	// Whisper names its output after the audio file. Move it into place.
	base := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
	whisperOut := filepath.Join(outputDir, base+".srt")
	if whisperOut != subtitleFile {
		if err := os.Rename(whisperOut, subtitleFile); err != nil {
			return fmt.Errorf("move whisper output: %w", err)
		}
	}

	log.Printf("[subtitle] ✅ SRT generated: %s", subtitleFile)
	return nil
}

// ValidateSRT checks that the SRT file is non-empty and plausibly formed.
func ValidateSRT(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
	}
	if lineCount < 4 {
		return fmt.Errorf("SRT file appears empty or malformed (%d lines)", lineCount)
	}
	return nil
}
