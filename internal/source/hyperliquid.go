package source

import (
	"context"
	"encoding/json"
	"fmt"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// Hyperliquid returns the whole universe in one POST /info call. Funding
// is hourly on this venue; the 8h figure is the hourly rate times eight.
type Hyperliquid struct {
	client  *xhttp.Client
	baseURL string
}

func NewHyperliquid(client *xhttp.Client, baseURL string) *Hyperliquid {
	return &Hyperliquid{client: client, baseURL: baseURL}
}

func (h *Hyperliquid) Name() string { return "hyperliquid" }

type hlAsset struct {
	Name string `json:"name"`
}

type hlMeta struct {
	Universe []hlAsset `json:"universe"`
}

type hlAssetCtx struct {
	Funding      string `json:"funding"`
	OpenInterest string `json:"openInterest"`
	MarkPx       string `json:"markPx"`
	PrevDayPx    string `json:"prevDayPx"`
	DayNtlVlm    string `json:"dayNtlVlm"`
}

func (h *Hyperliquid) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	// Response shape: [meta, [assetCtx...]], parallel arrays by index.
	var raw []json.RawMessage
	err := h.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    h.baseURL + "/info",
		Body:   map[string]string{"type": "metaAndAssetCtxs"},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid info: %w", err)
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("hyperliquid info: unexpected shape, %d elements", len(raw))
	}

	var meta hlMeta
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return nil, fmt.Errorf("hyperliquid meta: %w", err)
	}
	var ctxs []hlAssetCtx
	if err := json.Unmarshal(raw[1], &ctxs); err != nil {
		return nil, fmt.Errorf("hyperliquid asset ctxs: %w", err)
	}
	if len(ctxs) < len(meta.Universe) {
		return nil, fmt.Errorf("hyperliquid: %d assets but %d contexts", len(meta.Universe), len(ctxs))
	}

	records := make([]models.NormalizedRecord, 0, len(meta.Universe))
	for i, asset := range meta.Universe {
		c := ctxs[i]
		cs := symbols.Classify(asset.Name, h.Name())
		mark := parseFloat(c.MarkPx)

		rec := models.NormalizedRecord{
			Symbol:     cs.Symbol,
			Exchange:   h.Name(),
			AssetClass: cs.AssetClass,
		}
		switch kind {
		case models.KindFunding:
			rec.FundingRate8h = parseFloat(c.Funding) * 8
			rec.Price = mark
		case models.KindOpenInterest:
			rec.OpenInterestUSD = parseFloat(c.OpenInterest) * mark
			rec.Price = mark
		case models.KindTickers:
			rec.Price = mark
			if prev := parseFloat(c.PrevDayPx); prev > 0 {
				rec.Change24hPercent = (mark - prev) / prev * 100
			}
			rec.QuoteVolume24hUSD = parseFloat(c.DayNtlVlm)
		default:
			return nil, nil
		}
		records = append(records, rec)
	}
	return dedupe(records), nil
}
