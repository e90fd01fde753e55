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

// assetIDs maps free-form subject text to a canonical CoinGecko asset id.
// This is an explicit lookup, not a fuzzy search: unknown subjects get no
// market enrichment.
var assetIDs = map[string]string{
	"btc": "bitcoin", "bitcoin": "bitcoin",
	"eth": "ethereum", "ethereum": "ethereum",
	"xrp": "ripple", "ripple": "ripple", "리플": "ripple",
	"xmr": "monero", "monero": "monero", "모네로": "monero",
	"doge": "dogecoin", "dogecoin": "dogecoin",
	"sol": "solana", "solana": "solana",
	"pi": "pi-network", "파이": "pi-network",
}

// ResolveAssetID normalizes a subject to a canonical asset id, or "" when
// the subject is not a known asset.
func ResolveAssetID(subject string) string {
	return assetIDs[strings.ToLower(strings.TrimSpace(subject))]
}

// MarketClient fetches market metric snapshots from CoinGecko.
type MarketClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewMarketClient(timeout time.Duration) *MarketClient {
	return &MarketClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.coingecko.com/api/v3",
	}
}

type coinMarket struct {
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
}

// Snapshot fetches metrics for an asset id. Returns nil when the asset is
// unknown or the API is unreachable; callers treat that as "no enrichment".
func (c *MarketClient) Snapshot(ctx context.Context, assetID string) *types.MarketSnapshot {
	if assetID == "" {
		return nil
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("ids", assetID)
	q.Set("price_change_percentage", "7d")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/coins/markets?"+q.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var markets []coinMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil || len(markets) == 0 {
		return nil
	}

	m := markets[0]
	return &types.MarketSnapshot{
		Price:     m.CurrentPrice,
		Change24h: m.PriceChangePercentage24h,
		Change7d:  m.PriceChangePercentage7d,
		MarketCap: m.MarketCap,
		Volume:    m.TotalVolume,
	}
}

// MarketLine renders a snapshot into a single reference line, emitting only
// the fields that are present. Returns "" for a nil or empty snapshot.
func MarketLine(snap *types.MarketSnapshot) string {
	if snap == nil {
		return ""
	}

	var parts []string
	if snap.Price != nil {
		parts = append(parts, fmt.Sprintf("price: $%.2f", *snap.Price))
	}
	if snap.Change24h != nil {
		parts = append(parts, fmt.Sprintf("24h: %+.2f%%", *snap.Change24h))
	}
	if snap.Change7d != nil {
		parts = append(parts, fmt.Sprintf("7d: %+.2f%%", *snap.Change7d))
	}
	if snap.MarketCap != nil {
		parts = append(parts, fmt.Sprintf("market cap: $%.0f", *snap.MarketCap))
	}
	if snap.Volume != nil {
		parts = append(parts, fmt.Sprintf("24h volume: $%.0f", *snap.Volume))
	}
	return strings.Join(parts, " / ")
}
