package content

import (
	"context"
	"log"

	"newsclip-pipeline/types"
)

// Provider fetches at most one best source item for a subject. A nil item
// with a nil error means the provider had nothing relevant.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, subject, language string) (*types.SourceItem, error)
}

// Selector tries an ordered list of providers until one yields an item.
type Selector struct {
	providers []Provider
}

// NewSelector builds a selector over the given providers. When mode names a
// single provider, the chain is restricted to it; "auto" (or empty) keeps
// the full priority order.
func NewSelector(mode string, providers ...Provider) *Selector {
	if mode == "" || mode == "auto" {
		return &Selector{providers: providers}
	}
	var filtered []Provider
	for _, p := range providers {
		if p.Name() == mode {
			filtered = append(filtered, p)
		}
	}
	return &Selector{providers: filtered}
}

// Select returns the first item produced by the provider chain. Provider
// errors are swallowed and logged; total failure yields a SourceItem with
// the bare subject as title and an empty body, which downstream stages
// treat as "no factual grounding available".
func (s *Selector) Select(ctx context.Context, subject, language string) types.SourceItem {
	for _, p := range s.providers {
		item, err := p.Fetch(ctx, subject, language)
		if err != nil {
			log.Printf("[content] provider %s: %v — trying next", p.Name(), err)
			continue
		}
		if item == nil || item.Title == "" {
			continue
		}
		log.Printf("[content] source: %s | title: %s | url: %s", p.Name(), item.Title, item.URL)
		return *item
	}

	log.Println("[content] Warning: no content source available — falling back to generic knowledge")
	return types.SourceItem{Title: subject}
}
