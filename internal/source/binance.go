package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/service/ratelimit"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// Binance aggregates USDT-margined perpetual data. Open interest has no
// bulk endpoint, so the top contracts by quote volume are fetched
// one-by-one in fixed-size batches against the venue's rate limit.
type Binance struct {
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	baseURL string

	topN      int
	batchSize int
}

// NewBinance creates the Binance adapter.
func NewBinance(client *xhttp.Client, limiter *ratelimit.Limiter, baseURL string, topN, batchSize int) *Binance {
	if topN <= 0 {
		topN = 100
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	return &Binance{client: client, limiter: limiter, baseURL: baseURL, topN: topN, batchSize: batchSize}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	switch kind {
	case models.KindFunding:
		return b.fetchFunding(ctx)
	case models.KindTickers:
		return b.fetchTickers(ctx)
	case models.KindOpenInterest:
		return b.fetchOpenInterest(ctx)
	}
	return nil, nil
}

type binancePremium struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
	MarkPrice       string `json:"markPrice"`
}

func (b *Binance) fetchFunding(ctx context.Context) ([]models.NormalizedRecord, error) {
	var premiums []binancePremium
	err := b.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/fapi/v1/premiumIndex",
	}, &premiums)
	if err != nil {
		return nil, fmt.Errorf("binance premium index: %w", err)
	}

	records := make([]models.NormalizedRecord, 0, len(premiums))
	for _, p := range premiums {
		cs := symbols.Classify(p.Symbol, b.Name())
		records = append(records, models.NormalizedRecord{
			Symbol:        cs.Symbol,
			Exchange:      b.Name(),
			AssetClass:    cs.AssetClass,
			FundingRate8h: parseFloat(p.LastFundingRate),
			Price:         parseFloat(p.MarkPrice),
		})
	}
	return dedupe(records), nil
}

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

func (b *Binance) fetchTickers(ctx context.Context) ([]models.NormalizedRecord, error) {
	tickers, err := b.dayTickers(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.NormalizedRecord, 0, len(tickers))
	for _, t := range tickers {
		cs := symbols.Classify(t.Symbol, b.Name())
		records = append(records, models.NormalizedRecord{
			Symbol:            cs.Symbol,
			Exchange:          b.Name(),
			AssetClass:        cs.AssetClass,
			Price:             parseFloat(t.LastPrice),
			Change24hPercent:  parseFloat(t.PriceChangePercent),
			QuoteVolume24hUSD: parseFloat(t.QuoteVolume),
		})
	}
	return dedupe(records), nil
}

type binanceOpenInterest struct {
	Symbol       string `json:"symbol"`
	OpenInterest string `json:"openInterest"`
}

func (b *Binance) fetchOpenInterest(ctx context.Context) ([]models.NormalizedRecord, error) {
	tickers, err := b.dayTickers(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(tickers, func(i, j int) bool {
		return parseFloat(tickers[i].QuoteVolume) > parseFloat(tickers[j].QuoteVolume)
	})
	if len(tickers) > b.topN {
		tickers = tickers[:b.topN]
	}

	prices := make(map[string]float64, len(tickers))
	syms := make([]string, 0, len(tickers))
	for _, t := range tickers {
		prices[t.Symbol] = parseFloat(t.LastPrice)
		syms = append(syms, t.Symbol)
	}

	var (
		mu      sync.Mutex
		records []models.NormalizedRecord
	)
	err = ForEachBatch(ctx, syms, b.batchSize, func(ctx context.Context, batch []string) error {
		var wg sync.WaitGroup
		for _, raw := range batch {
			if werr := b.limiter.Wait(ctx, b.Name(), float64(b.batchSize), float64(b.batchSize)); werr != nil {
				return werr
			}
			wg.Add(1)
			go func(raw string) {
				defer wg.Done()
				var oi binanceOpenInterest
				ferr := b.client.DoJSON(ctx, &xhttp.RequestOptions{
					Method:      xhttp.MethodGet,
					URL:         b.baseURL + "/fapi/v1/openInterest",
					QueryParams: map[string][]string{"symbol": {raw}},
				}, &oi)
				if ferr != nil {
					return // one missing contract is not a source failure
				}
				cs := symbols.Classify(raw, b.Name())
				mu.Lock()
				records = append(records, models.NormalizedRecord{
					Symbol:          cs.Symbol,
					Exchange:        b.Name(),
					AssetClass:      cs.AssetClass,
					OpenInterestUSD: parseFloat(oi.OpenInterest) * prices[raw],
					Price:           prices[raw],
				})
				mu.Unlock()
			}(raw)
		}
		wg.Wait()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("binance open interest: %w", err)
	}

	// Batch completion order is nondeterministic; restore a stable order.
	sort.Slice(records, func(i, j int) bool {
		return records[i].OpenInterestUSD > records[j].OpenInterestUSD
	})
	return dedupe(records), nil
}

func (b *Binance) dayTickers(ctx context.Context) ([]binanceTicker, error) {
	var tickers []binanceTicker
	err := b.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/fapi/v1/ticker/24hr",
	}, &tickers)
	if err != nil {
		return nil, fmt.Errorf("binance 24hr tickers: %w", err)
	}
	return tickers, nil
}
