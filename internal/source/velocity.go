package source

import (
	"math"
	"time"
)

// Velocity-based funding has no discrete settlement schedule: the
// per-second rate drifts continuously at a velocity proportional to the
// market's net skew, so the current rate must be extrapolated from the
// last on-chain update.

const (
	secondsPerYear = 365.25 * 24 * 3600

	// DefaultEightHourSeconds converts a per-second rate to the 8h figure
	// the rest of the pipeline speaks. The venue documents this factor
	// only implicitly through its UI, so it stays configurable.
	DefaultEightHourSeconds = 8 * 3600

	// minNetExposureUSD is the dead zone below which skew is noise and
	// the velocity is treated as zero.
	minNetExposureUSD = 1.0

	// minRate8hEpsilon discards dormant markets whose derived 8h rate is
	// negligible; these are absent signals, not zero-rate signals.
	minRate8hEpsilon = 1e-7
)

// VelocityParams are the per-pair funding parameters as last reported by
// the venue. Rates are percentage fractions per second.
type VelocityParams struct {
	SkewCoefficientPerYear float64
	VelocityCapPerYear     float64
	MaxRatePerSecond       float64
	LastRatePerSecond      float64
	LastUpdated            time.Time
}

// ExposureSnapshot is the pair's current open interest, long and short,
// in base-asset units and in collateral units.
type ExposureSnapshot struct {
	LongToken       float64
	ShortToken      float64
	LongCollateral  float64
	ShortCollateral float64
	CollateralPrice float64
}

// netExposure returns the pair's net skew in base-asset units and USD.
// The implied token price is total collateral OI times the collateral
// price over total token OI.
func (e ExposureSnapshot) netExposure() (token, usd float64) {
	token = e.LongToken - e.ShortToken
	totalToken := e.LongToken + e.ShortToken
	if totalToken == 0 {
		return token, 0
	}
	impliedPrice := (e.LongCollateral + e.ShortCollateral) * e.CollateralPrice / totalToken
	return token, token * impliedPrice
}

// FundingVelocityPerYear derives the current drift of the per-second rate.
// Magnitude is |netToken| times the skew coefficient, capped; the sign
// follows the net exposure direction.
func FundingVelocityPerYear(p VelocityParams, e ExposureSnapshot) float64 {
	netToken, netUSD := e.netExposure()
	if math.Abs(netUSD) < minNetExposureUSD {
		return 0
	}
	v := math.Min(math.Abs(netToken)*p.SkewCoefficientPerYear, p.VelocityCapPerYear)
	if netToken < 0 {
		return -v
	}
	return v
}

// CurrentRatePerSecond extrapolates the per-second funding rate from the
// last known value by linear motion at the current velocity, clamped at
// the symmetric per-second cap. If the elapsed time would carry the rate
// past the cap before now, the rate snaps to the cap instead of
// overshooting.
func CurrentRatePerSecond(p VelocityParams, e ExposureSnapshot, now time.Time) float64 {
	rate := p.LastRatePerSecond

	vel := FundingVelocityPerYear(p, e)
	if vel != 0 {
		elapsed := now.Sub(p.LastUpdated).Seconds()
		if elapsed > 0 {
			rate += vel / secondsPerYear * elapsed
		}
	}

	if cap := p.MaxRatePerSecond; cap > 0 {
		if rate > cap {
			rate = cap
		} else if rate < -cap {
			rate = -cap
		}
	}
	return rate
}

// EightHourRate converts a per-second rate to its 8h-equivalent figure.
// The underlying unit is already a percentage fraction, so the conversion
// is a plain multiply with no extra x100.
func EightHourRate(perSecond float64, eightHourSeconds float64) float64 {
	if eightHourSeconds <= 0 {
		eightHourSeconds = DefaultEightHourSeconds
	}
	return perSecond * eightHourSeconds
}

// NegligibleRate8h reports whether an 8h rate belongs to a dormant market
// and should be dropped rather than emitted as a zero-rate signal.
func NegligibleRate8h(rate8h float64) bool {
	return math.Abs(rate8h) < minRate8hEpsilon
}
