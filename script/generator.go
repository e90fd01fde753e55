package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"newsclip-pipeline/llm"
	"newsclip-pipeline/retry"
	"newsclip-pipeline/types"
)

// Window is the acceptable character-count range for a generated script.
type Window struct {
	MinChars int
	MaxChars int
}

// WindowFor derives a character window from a target spoken duration using
// a chars-per-second rate band.
func WindowFor(targetSeconds int, minRate, maxRate float64) Window {
	if minRate <= 0 {
		minRate = 7.6
	}
	if maxRate <= 0 {
		maxRate = 14.0
	}
	return Window{
		MinChars: int(float64(targetSeconds) * minRate),
		MaxChars: int(float64(targetSeconds) * maxRate),
	}
}

func (w Window) contains(n int) bool {
	return n >= w.MinChars && n <= w.MaxChars
}

// Generator produces a narration script within a length window, retrying
// out-of-range or failed generations with a fixed delay.
type Generator struct {
	gen    llm.Generator
	policy retry.Policy
}

func NewGenerator(gen llm.Generator, maxRetries int, retryDelay time.Duration) *Generator {
	if maxRetries < 1 {
		maxRetries = 5
	}
	return &Generator{gen: gen, policy: retry.Policy{Attempts: maxRetries, Delay: retryDelay}}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// normalize collapses all whitespace runs to single spaces.
func normalize(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// Generate returns a narration script for the subject grounded on the
// source item. Length violations are soft failures: they are retried and,
// once attempts are exhausted, the last non-empty script is accepted as-is.
// The only hard failure is the capability producing no text on any attempt.
func (g *Generator) Generate(ctx context.Context, subject string, source types.SourceItem, marketLine string, targetSeconds int, window Window) (string, error) {
	prompt := buildPrompt(subject, source, marketLine, targetSeconds, window)
	log.Printf("[script] subject: %s", subject)

	lastScript := ""
	err := g.policy.Do(ctx, func() error {
		response, err := g.gen.Generate(ctx, prompt)
		if err != nil {
			log.Printf("[script] generation failed: %v — retrying", err)
			return err
		}

		s := normalize(response)
		if s == "" {
			log.Println("[script] empty response — retrying")
			return errors.New("empty response")
		}

		lastScript = s
		if !window.contains(len(s)) {
			log.Printf("[script] Warning: length off (%d chars, want %d-%d) — retrying...", len(s), window.MinChars, window.MaxChars)
			return fmt.Errorf("script length %d outside [%d,%d]", len(s), window.MinChars, window.MaxChars)
		}
		return nil
	})

	if lastScript == "" {
		return "", fmt.Errorf("script generation produced no text after %d attempts: %w", g.policy.Attempts, err)
	}
	if err != nil {
		// Retries exhausted on the length constraint only: boundary acceptance.
		log.Printf("[script] Warning: accepting out-of-range script after %d attempts (%d chars)", g.policy.Attempts, len(lastScript))
	}

	log.Printf("[script] ✅ Script ready: %d chars", len(lastScript))
	return lastScript, nil
}

func buildPrompt(subject string, source types.SourceItem, marketLine string, targetSeconds int, window Window) string {
	var sb strings.Builder
	sb.WriteString("You are a market news analyst narrating short videos.\n")
	sb.WriteString(fmt.Sprintf("Write a calm, spoken-flow narration script about %q based on the article and reference data below.\n\n", subject))
	sb.WriteString("Rules:\n")
	sb.WriteString("- One continuous narrative in conversational tone, no headline lists\n")
	sb.WriteString("- No headings, markup, bullet points or bracketed blocks — output the script body only\n")
	sb.WriteString("- Keep numbers and figures from the source, mention their context\n")
	sb.WriteString("- Hedge uncertain claims as possibilities, never exaggerate, no investment advice\n")
	sb.WriteString(fmt.Sprintf("- Target length: about %d seconds, %d-%d characters\n\n", targetSeconds, window.MinChars, window.MaxChars))

	sb.WriteString(fmt.Sprintf("TITLE: %s\n", source.Title))
	if source.Body != "" {
		sb.WriteString(fmt.Sprintf("ARTICLE:\n%s\n", source.Body))
	} else {
		sb.WriteString("ARTICLE: (none found — write from general knowledge of the subject)\n")
	}
	if source.URL != "" {
		sb.WriteString(fmt.Sprintf("SOURCE URL: %s\n", source.URL))
	}
	if marketLine != "" {
		sb.WriteString(fmt.Sprintf("REFERENCE DATA: %s\n", marketLine))
	}
	return sb.String()
}
