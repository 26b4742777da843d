package source

import (
	"context"
	"fmt"
	"time"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/symbols"
	xhttp "DerivPulse/pkg/http"
)

// Ostium is the hardest per-source computation: the venue settles funding
// continuously, so each pair's current rate must be extrapolated from the
// last on-chain update using the velocity model in velocity.go. Dormant
// pairs whose derived 8h rate is negligible are dropped, not zeroed.
type Ostium struct {
	client  *xhttp.Client
	baseURL string

	// eightHourSeconds is the per-second -> 8h conversion factor. The
	// venue only implies it through UI behavior, so it is configuration.
	eightHourSeconds float64
	now              func() time.Time
}

func NewOstium(client *xhttp.Client, baseURL string, eightHourSeconds float64) *Ostium {
	if eightHourSeconds <= 0 {
		eightHourSeconds = DefaultEightHourSeconds
	}
	return &Ostium{
		client:           client,
		baseURL:          baseURL,
		eightHourSeconds: eightHourSeconds,
		now:              time.Now,
	}
}

func (o *Ostium) Name() string { return "ostium" }

type ostiumPair struct {
	Symbol string `json:"symbol"`

	SkewCoefficientPerYear float64 `json:"skewCoefficientPerYear"`
	VelocityCapPerYear     float64 `json:"velocityCapPerYear"`
	MaxRatePerSecond       float64 `json:"maxRatePerSecond"`
	LastRatePerSecond      float64 `json:"lastFundingRatePerSecond"`
	LastUpdateTs           int64   `json:"lastFundingUpdateTs"`

	LongOiToken       float64 `json:"longOiToken"`
	ShortOiToken      float64 `json:"shortOiToken"`
	LongOiCollateral  float64 `json:"longOiCollateral"`
	ShortOiCollateral float64 `json:"shortOiCollateral"`
	CollateralPrice   float64 `json:"collateralPrice"`

	MidPrice float64 `json:"midPrice"`
}

func (o *Ostium) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	if kind != models.KindFunding {
		return nil, nil
	}

	var pairs []ostiumPair
	err := o.client.DoJSON(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    o.baseURL + "/v1/pairs",
	}, &pairs)
	if err != nil {
		return nil, fmt.Errorf("ostium pairs: %w", err)
	}

	now := o.now()
	records := make([]models.NormalizedRecord, 0, len(pairs))
	for _, p := range pairs {
		params := VelocityParams{
			SkewCoefficientPerYear: p.SkewCoefficientPerYear,
			VelocityCapPerYear:     p.VelocityCapPerYear,
			MaxRatePerSecond:       p.MaxRatePerSecond,
			LastRatePerSecond:      p.LastRatePerSecond,
			LastUpdated:            time.Unix(p.LastUpdateTs, 0),
		}
		exposure := ExposureSnapshot{
			LongToken:       p.LongOiToken,
			ShortToken:      p.ShortOiToken,
			LongCollateral:  p.LongOiCollateral,
			ShortCollateral: p.ShortOiCollateral,
			CollateralPrice: p.CollateralPrice,
		}

		rate8h := EightHourRate(CurrentRatePerSecond(params, exposure, now), o.eightHourSeconds)
		if NegligibleRate8h(rate8h) {
			continue
		}

		cs := symbols.Classify(p.Symbol, o.Name())
		records = append(records, models.NormalizedRecord{
			Symbol:        cs.Symbol,
			Exchange:      o.Name(),
			AssetClass:    cs.AssetClass,
			FundingRate8h: rate8h,
			Price:         p.MidPrice,
		})
	}
	return dedupe(records), nil
}
