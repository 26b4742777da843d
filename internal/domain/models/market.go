package models

import "time"

// AssetClass is the canonical classification of a traded symbol.
type AssetClass string

const (
	AssetCrypto      AssetClass = "crypto"
	AssetStocks      AssetClass = "stocks"
	AssetForex       AssetClass = "forex"
	AssetCommodities AssetClass = "commodities"
)

// Valid reports whether the class is one of the known values.
func (a AssetClass) Valid() bool {
	switch a {
	case AssetCrypto, AssetStocks, AssetForex, AssetCommodities:
		return true
	}
	return false
}

// Kind identifies which logical dataset a record belongs to.
type Kind string

const (
	KindFunding      Kind = "funding"
	KindOpenInterest Kind = "open_interest"
	KindTickers      Kind = "tickers"
)

// NormalizedRecord is the uniform schema every source is mapped into.
// Symbol is always canonical (BTC, AAPL, EURUSD) regardless of the
// source-specific spelling; (Symbol, Exchange) is unique per fetch cycle.
// The numeric fields are kind-specific and zero-valued when not applicable.
type NormalizedRecord struct {
	Symbol     string     `json:"symbol"`
	Exchange   string     `json:"exchange"`
	AssetClass AssetClass `json:"assetClass"`

	// Funding.
	FundingRate8h float64 `json:"fundingRate8h,omitempty"`

	// Open interest.
	OpenInterestUSD float64 `json:"openInterestUsd,omitempty"`

	// Tickers.
	Price             float64 `json:"price,omitempty"`
	Change24hPercent  float64 `json:"change24hPercent,omitempty"`
	QuoteVolume24hUSD float64 `json:"quoteVolume24hUsd,omitempty"`
}

// HealthStatus is the per-source outcome of a fetch cycle.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthEmpty HealthStatus = "empty"
	HealthError HealthStatus = "error"
)

// SourceHealth records one adapter's outcome. The orchestrator emits
// exactly one entry per configured adapter per cycle, success or not.
type SourceHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Count     int          `json:"count"`
	LatencyMs int64        `json:"latencyMs"`
	Error     string       `json:"error,omitempty"`
}

// AggregationResult is the merged output of one orchestrator run.
// Data holds only records from adapters whose status is not error.
type AggregationResult struct {
	Data   []NormalizedRecord `json:"data"`
	Health []SourceHealth     `json:"health"`
}

// Meta summarizes an aggregation cycle for API consumers.
type Meta struct {
	TotalExchanges  int       `json:"totalExchanges"`
	ActiveExchanges int       `json:"activeExchanges"`
	TotalEntries    int       `json:"totalEntries"`
	Timestamp       time.Time `json:"timestamp"`
}

// MarketsResponse is the JSON body served per logical endpoint.
type MarketsResponse struct {
	Data   []NormalizedRecord `json:"data"`
	Health []SourceHealth     `json:"health"`
	Meta   Meta               `json:"meta"`
}

// MarketsQuery holds the optional filters accepted by every markets endpoint.
type MarketsQuery struct {
	Symbol     string `query:"symbol"`
	AssetClass string `query:"assetClass" default:"all" validate:"omitempty,oneof=crypto stocks forex commodities all"`
	Limit      int    `query:"limit" default:"0" validate:"omitempty,gte=0,lte=5000"`
}
