package source

import (
	"context"
	"fmt"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// Bybit serves funding, open interest, and tickers from a single linear
// tickers endpoint.
type Bybit struct {
	client  *xhttp.Client
	baseURL string
}

func NewBybit(client *xhttp.Client, baseURL string) *Bybit {
	return &Bybit{client: client, baseURL: baseURL}
}

func (b *Bybit) Name() string { return "bybit" }

type bybitTicker struct {
	Symbol            string `json:"symbol"`
	FundingRate       string `json:"fundingRate"`
	OpenInterestValue string `json:"openInterestValue"`
	LastPrice         string `json:"lastPrice"`
	Price24hPcnt      string `json:"price24hPcnt"`
	Turnover24h       string `json:"turnover24h"`
}

type bybitTickersResponse struct {
	RetCode int `json:"retCode"`
	Result  struct {
		List []bybitTicker `json:"list"`
	} `json:"result"`
}

func (b *Bybit) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	var resp bybitTickersResponse
	err := b.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/v5/market/tickers",
		QueryParams: map[string][]string{"category": {"linear"}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bybit tickers: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers: retCode %d", resp.RetCode)
	}

	records := make([]models.NormalizedRecord, 0, len(resp.Result.List))
	for _, t := range resp.Result.List {
		cs := symbols.Classify(t.Symbol, b.Name())
		rec := models.NormalizedRecord{
			Symbol:     cs.Symbol,
			Exchange:   b.Name(),
			AssetClass: cs.AssetClass,
		}
		switch kind {
		case models.KindFunding:
			rec.FundingRate8h = parseFloat(t.FundingRate)
			rec.Price = parseFloat(t.LastPrice)
		case models.KindOpenInterest:
			rec.OpenInterestUSD = parseFloat(t.OpenInterestValue)
			rec.Price = parseFloat(t.LastPrice)
		case models.KindTickers:
			rec.Price = parseFloat(t.LastPrice)
			rec.Change24hPercent = parseFloat(t.Price24hPcnt) * 100
			rec.QuoteVolume24hUSD = parseFloat(t.Turnover24h)
		default:
			return nil, nil
		}
		records = append(records, rec)
	}
	return dedupe(records), nil
}
