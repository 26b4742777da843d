package source

import (
	"context"
	"fmt"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// BingX lists crypto perps alongside category-prefixed synthetic markets
// (NCFX forex, NCCO commodities, NCIX indices) denominated 2USD.
type BingX struct {
	client  *xhttp.Client
	baseURL string
}

func NewBingX(client *xhttp.Client, baseURL string) *BingX {
	return &BingX{client: client, baseURL: baseURL}
}

func (b *BingX) Name() string { return "bingx" }

type bingxPremium struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
	MarkPrice       string `json:"markPrice"`
}

type bingxResponse struct {
	Code int            `json:"code"`
	Data []bingxPremium `json:"data"`
}

func (b *BingX) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	if kind != models.KindFunding {
		return nil, nil
	}

	var resp bingxResponse
	err := b.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/openApi/swap/v2/quote/premiumIndex",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bingx premium index: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("bingx premium index: code %d", resp.Code)
	}

	records := make([]models.NormalizedRecord, 0, len(resp.Data))
	for _, p := range resp.Data {
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
