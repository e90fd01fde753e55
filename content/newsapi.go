package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsclip-pipeline/types"
)

// NewsAPIProvider queries NewsAPI.org for the most recent article matching
// the subject.
type NewsAPIProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewNewsAPIProvider creates the provider. An empty apiKey makes Fetch
// report "not configured" so the chain moves on.
func NewNewsAPIProvider(apiKey string, timeout time.Duration) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://newsapi.org/v2/everything",
	}
}

func (p *NewsAPIProvider) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns the newest article for the subject, or nil when none match.
func (p *NewsAPIProvider) Fetch(ctx context.Context, subject, language string) (*types.SourceItem, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("NEWSAPI_KEY not set")
	}

	q := url.Values{}
	q.Set("q", subject)
	q.Set("language", languageCode(language))
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "5")
	q.Set("apiKey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	var result newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}

	for _, article := range result.Articles {
		if article.Title == "" || article.Title == "[Removed]" {
			continue
		}
		body := strings.TrimSpace(strings.Join([]string{article.Description, article.Content}, "\n"))
		return &types.SourceItem{
			Title: article.Title,
			Body:  body,
			URL:   article.URL,
		}, nil
	}
	return nil, nil
}

// languageCode reduces a locale like "en-US" to the bare code NewsAPI wants.
func languageCode(language string) string {
	if i := strings.Index(language, "-"); i > 0 {
		return language[:i]
	}
	if language == "" {
		return "en"
	}
	return language
}
