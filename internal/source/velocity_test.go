package source

import (
	"math"
	"testing"
	"time"
)

func balancedExposure() ExposureSnapshot {
	return ExposureSnapshot{
		LongToken:       100,
		ShortToken:      100,
		LongCollateral:  5000,
		ShortCollateral: 5000,
		CollateralPrice: 1,
	}
}

func TestZeroNetExposureKeepsLastRate(t *testing.T) {
	p := VelocityParams{
		SkewCoefficientPerYear: 0.5,
		VelocityCapPerYear:     10,
		MaxRatePerSecond:       1e-6,
		LastRatePerSecond:      3e-8,
		LastUpdated:            time.Now().Add(-time.Hour),
	}
	got := CurrentRatePerSecond(p, balancedExposure(), time.Now())
	if got != p.LastRatePerSecond {
		t.Fatalf("rate drifted with zero velocity: got %g, want %g", got, p.LastRatePerSecond)
	}
}

func TestVelocitySignFollowsNetExposure(t *testing.T) {
	p := VelocityParams{SkewCoefficientPerYear: 0.01, VelocityCapPerYear: 100}

	long := balancedExposure()
	long.LongToken = 150
	if v := FundingVelocityPerYear(p, long); v <= 0 {
		t.Fatalf("net long skew should yield positive velocity, got %g", v)
	}

	short := balancedExposure()
	short.ShortToken = 150
	if v := FundingVelocityPerYear(p, short); v >= 0 {
		t.Fatalf("net short skew should yield negative velocity, got %g", v)
	}
}

func TestVelocityCap(t *testing.T) {
	p := VelocityParams{SkewCoefficientPerYear: 1000, VelocityCapPerYear: 2}
	e := balancedExposure()
	e.LongToken = 1e6
	if v := FundingVelocityPerYear(p, e); v != 2 {
		t.Fatalf("velocity = %g, want capped at 2", v)
	}
}

func TestRateSnapsToCapInsteadOfOvershooting(t *testing.T) {
	p := VelocityParams{
		SkewCoefficientPerYear: 1,
		VelocityCapPerYear:     100,
		MaxRatePerSecond:       1e-7,
		LastRatePerSecond:      9e-8,
		LastUpdated:            time.Now().Add(-24 * time.Hour),
	}
	e := balancedExposure()
	e.LongToken = 1e6 // strong positive drift, cap crossed well before now

	got := CurrentRatePerSecond(p, e, time.Now())
	if got != p.MaxRatePerSecond {
		t.Fatalf("rate = %g, want snapped to cap %g", got, p.MaxRatePerSecond)
	}
}

func TestRateSymmetricNegativeCap(t *testing.T) {
	p := VelocityParams{
		SkewCoefficientPerYear: 1,
		VelocityCapPerYear:     100,
		MaxRatePerSecond:       1e-7,
		LastRatePerSecond:      -9e-8,
		LastUpdated:            time.Now().Add(-24 * time.Hour),
	}
	e := balancedExposure()
	e.ShortToken = 1e6

	got := CurrentRatePerSecond(p, e, time.Now())
	if got != -p.MaxRatePerSecond {
		t.Fatalf("rate = %g, want snapped to -cap %g", got, -p.MaxRatePerSecond)
	}
}

func TestEightHourRateConversion(t *testing.T) {
	perSecond := 3.5e-7
	want := perSecond * 28800
	if got := EightHourRate(perSecond, 0); math.Abs(got-want) > 1e-15 {
		t.Fatalf("EightHourRate = %g, want %g", got, want)
	}
	// the conversion factor is configuration, not an invariant
	if got := EightHourRate(perSecond, 3600); math.Abs(got-perSecond*3600) > 1e-15 {
		t.Fatalf("custom factor ignored: %g", got)
	}
}

func TestNegligibleRateDiscarded(t *testing.T) {
	if !NegligibleRate8h(1e-9) {
		t.Fatalf("dormant market not discarded")
	}
	if NegligibleRate8h(1e-4) {
		t.Fatalf("live market discarded")
	}
}

func TestBelowExposureThresholdZeroVelocity(t *testing.T) {
	p := VelocityParams{SkewCoefficientPerYear: 1, VelocityCapPerYear: 10}
	e := ExposureSnapshot{
		LongToken: 1.000001, ShortToken: 1,
		LongCollateral: 1, ShortCollateral: 1,
		CollateralPrice: 0.1,
	}
	if v := FundingVelocityPerYear(p, e); v != 0 {
		t.Fatalf("tiny USD exposure should zero the velocity, got %g", v)
	}
}
