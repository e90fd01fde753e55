package terms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"newsclip-pipeline/llm"
	"newsclip-pipeline/retry"
)

// Generator derives short search terms from a subject and script. It never
// fails: when every attempt produces unusable output it degrades to a
// deterministic fallback list.
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

// bracketRE grabs the first bracketed array substring from a free-text
// response. Best-effort repair only; the deterministic fallback is the
// hard floor.
var bracketRE = regexp.MustCompile(`(?s)\[.*?\]`)

// Generate returns search terms for the subject. Lists of unexpected arity
// are accepted as long as every element is a string.
func (g *Generator) Generate(ctx context.Context, subject, script string, amount int) []string {
	if amount < 1 {
		amount = 1
	}
	prompt := buildPrompt(subject, script, amount)
	log.Printf("[terms] subject: %s", subject)

	var searchTerms []string
	err := g.policy.Do(ctx, func() error {
		response, err := g.gen.Generate(ctx, prompt)
		if err != nil {
			log.Printf("[terms] Warning: generation failed: %v", err)
			return err
		}

		terms, err := parseTerms(response)
		if err != nil {
			log.Printf("[terms] Warning: %v — retrying", err)
			return err
		}
		searchTerms = terms
		return nil
	})

	if err != nil || len(searchTerms) == 0 {
		searchTerms = Fallback(subject, amount)
		log.Printf("[terms] Warning: using fallback terms: %v", searchTerms)
	}

	log.Printf("[terms] ✅ terms: %v", searchTerms)
	return searchTerms
}

// parseTerms decodes a strict JSON array of strings, repairing free-text
// responses by extracting the first bracketed substring.
func parseTerms(response string) ([]string, error) {
	terms, err := decodeStringList([]byte(response))
	if err == nil {
		return terms, nil
	}

	if match := bracketRE.FindString(response); match != "" {
		if terms, repairErr := decodeStringList([]byte(match)); repairErr == nil {
			return terms, nil
		}
	}
	return nil, fmt.Errorf("response is not a JSON array of strings")
}

func decodeStringList(data []byte) ([]string, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	terms := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New("non-string element")
		}
		terms = append(terms, strings.TrimSpace(s))
	}
	if len(terms) == 0 {
		return nil, errors.New("empty list")
	}
	return terms, nil
}

// Fallback builds the deterministic term list "<subject> 1".."<subject> N".
func Fallback(subject string, amount int) []string {
	terms := make([]string, amount)
	for i := range terms {
		terms[i] = fmt.Sprintf("%s %d", subject, i+1)
	}
	return terms
}

func buildPrompt(subject, script string, amount int) string {
	var sb strings.Builder
	sb.WriteString("# Role: video search term generator\n")
	sb.WriteString(fmt.Sprintf("Generate %d search terms for stock footage related to %q.\n", amount, subject))
	sb.WriteString("Respond with a JSON array of strings only. Example: [\"term one\", \"term two\"]\n")
	sb.WriteString("Each term is 1-3 words and must relate to the subject. Use English.\n")
	sb.WriteString(fmt.Sprintf("Script:\n%s\n", script))
	sb.WriteString("JSON array only. No extra text.")
	return sb.String()
}
