package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"newsclip-pipeline/types"
)

// DDGProvider is the last-resort general web search, backed by the
// DuckDuckGo instant answer API.
type DDGProvider struct {
	httpClient *http.Client
	baseURL    string
}

func NewDDGProvider(timeout time.Duration) *DDGProvider {
	return &DDGProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.duckduckgo.com/",
	}
}

func (p *DDGProvider) Name() string { return "ddgs" }

type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Fetch returns the top relevance result for the subject.
func (p *DDGProvider) Fetch(ctx context.Context, subject, language string) (*types.SourceItem, error) {
	q := url.Values{}
	q.Set("q", subject)
	q.Set("format", "json")
	q.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ddg request: %w", err)
	}
	defer resp.Body.Close()

	var result ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse ddg response: %w", err)
	}

	if result.AbstractText != "" {
		title := result.Heading
		if title == "" {
			title = subject
		}
		return &types.SourceItem{Title: title, Body: result.AbstractText, URL: result.AbstractURL}, nil
	}

	for _, topic := range result.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		return &types.SourceItem{Title: subject, Body: topic.Text, URL: topic.FirstURL}, nil
	}
	return nil, nil
}
