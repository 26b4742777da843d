package source

import (
	"context"
	"fmt"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// GateIO covers USDT-margined perpetuals, including the tokenized-equity
// contracts whose raw names carry the trailing X marker (AAPLX_USDT).
type GateIO struct {
	client  *xhttp.Client
	baseURL string
}

func NewGateIO(client *xhttp.Client, baseURL string) *GateIO {
	return &GateIO{client: client, baseURL: baseURL}
}

func (g *GateIO) Name() string { return "gateio" }

func (g *GateIO) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	switch kind {
	case models.KindFunding:
		return g.fetchFunding(ctx)
	case models.KindTickers, models.KindOpenInterest:
		return g.fetchTickers(ctx, kind)
	}
	return nil, nil
}

type gateContract struct {
	Name        string `json:"name"`
	FundingRate string `json:"funding_rate"`
	MarkPrice   string `json:"mark_price"`
}

func (g *GateIO) fetchFunding(ctx context.Context) ([]models.NormalizedRecord, error) {
	var contracts []gateContract
	err := g.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/api/v4/futures/usdt/contracts",
	}, &contracts)
	if err != nil {
		return nil, fmt.Errorf("gateio contracts: %w", err)
	}

	records := make([]models.NormalizedRecord, 0, len(contracts))
	for _, c := range contracts {
		cs := symbols.Classify(c.Name, g.Name())
		records = append(records, models.NormalizedRecord{
			Symbol:        cs.Symbol,
			Exchange:      g.Name(),
			AssetClass:    cs.AssetClass,
			FundingRate8h: parseFloat(c.FundingRate),
			Price:         parseFloat(c.MarkPrice),
		})
	}
	return dedupe(records), nil
}

type gateTicker struct {
	Contract         string `json:"contract"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
	VolumeSettle     string `json:"volume_24h_settle"`
	TotalSize        string `json:"total_size"`
}

func (g *GateIO) fetchTickers(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	var tickers []gateTicker
	err := g.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/api/v4/futures/usdt/tickers",
	}, &tickers)
	if err != nil {
		return nil, fmt.Errorf("gateio tickers: %w", err)
	}

	records := make([]models.NormalizedRecord, 0, len(tickers))
	for _, t := range tickers {
		cs := symbols.Classify(t.Contract, g.Name())
		rec := models.NormalizedRecord{
			Symbol:     cs.Symbol,
			Exchange:   g.Name(),
			AssetClass: cs.AssetClass,
			Price:      parseFloat(t.Last),
		}
		if kind == models.KindOpenInterest {
			// total_size is in contracts; contract size is 1 base unit
			// for the USDT book, so notional is size times price.
			rec.OpenInterestUSD = parseFloat(t.TotalSize) * parseFloat(t.Last)
		} else {
			rec.Change24hPercent = parseFloat(t.ChangePercentage)
			rec.QuoteVolume24hUSD = parseFloat(t.VolumeSettle)
		}
		records = append(records, rec)
	}
	return dedupe(records), nil
}
