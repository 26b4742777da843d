// Package ranking fetches the top symbols by market capitalization from
// a listings API. It is the data source behind the allowlist gate.
package ranking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	xhttp "DerivPulse/pkg/http"
)

// Client talks to a CoinMarketCap-compatible listings endpoint.
type Client struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

// New creates a ranking client. An empty apiKey is allowed; calls will
// fail and the allowlist degrades to fail-open.
func New(client *xhttp.Client, baseURL, apiKey string) *Client {
	return &Client{client: client, baseURL: baseURL, apiKey: apiKey}
}

type listing struct {
	Symbol string `json:"symbol"`
}

type listingsResponse struct {
	Data []listing `json:"data"`
}

// TopSymbols returns up to limit symbols ordered by market cap.
func (c *Client) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("ranking: no api key configured")
	}

	var resp listingsResponse
	err := c.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/cryptocurrency/listings/latest",
		Headers: map[string]string{
			"X-CMC_PRO_API_KEY": c.apiKey,
		},
		QueryParams: map[string][]string{
			"limit": {strconv.Itoa(limit)},
			"sort":  {"market_cap"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ranking listings: %w", err)
	}

	symbols := make([]string, 0, len(resp.Data))
	for _, l := range resp.Data {
		s := strings.ToUpper(strings.TrimSpace(l.Symbol))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols, nil
}
