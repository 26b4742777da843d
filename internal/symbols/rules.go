package symbols

import "DerivPulse/internal/domain/models"

// Rule describes how one source's raw symbol dialect is decoded. Steps run
// in a fixed order: quote suffix, wrapper prefix, category prefix,
// denomination suffix, residual suffix, then the membership check.
// Keeping the steps data-driven keeps each exchange quirk testable on its
// own instead of buried in a conditional chain.
type Rule struct {
	// QuoteSuffixes are settlement-leg markers removed before anything
	// else ("AAPLX_USDT" -> "AAPLX"). Longest match wins, at most one.
	QuoteSuffixes []string

	// WrapperPrefixes mark shielded/hedged contract variants. If one is
	// stripped and no later step classifies the symbol, it defaults to
	// stocks rather than crypto.
	WrapperPrefixes []string

	// CategoryPrefixes force an asset class ("NCFXEUR2USD" -> forex).
	CategoryPrefixes map[string]models.AssetClass

	// DenomSuffixes are denomination markers ("EUR2USD" -> "EUR").
	DenomSuffixes []string

	// ResidualSuffixes are tokenized-equity markers ("AAPLX" -> "AAPL").
	// The stripped form is only preferred when it matches a canonical set.
	ResidualSuffixes []string

	// SkipStocks disables the stocks membership check for sources whose
	// crypto tickers collide with equity tickers.
	SkipStocks bool
}

// genericQuoteSuffixes cover the common perp spellings across venues.
var genericQuoteSuffixes = []string{
	"_USDT", "-USDT", "USDT",
	"_USDC", "-USDC", "USDC",
	"_USD", "-USD",
	"BUSD", "_PERP", "-PERP", "PERP",
	"USD",
}

var genericRule = Rule{QuoteSuffixes: genericQuoteSuffixes}

// sourceRules is the per-source dialect table. Sources absent here fall
// back to genericRule.
var sourceRules = map[string]Rule{
	"binance": {QuoteSuffixes: genericQuoteSuffixes},
	"bybit":   {QuoteSuffixes: genericQuoteSuffixes},
	"okx":     {QuoteSuffixes: []string{"-USDT-SWAP", "-USD-SWAP", "-USDT", "-USD"}},

	// Gate.io lists tokenized equities with a trailing X before the
	// settlement leg: AAPLX_USDT.
	"gateio": {
		QuoteSuffixes:    []string{"_USDT", "_USD", "_USDC"},
		ResidualSuffixes: []string{"X"},
	},

	// BingX prefixes non-crypto listings with a category marker and
	// denominates them against USD: NCFXEUR2USD, NCCOXAU2USD.
	"bingx": {
		QuoteSuffixes: []string{"-USDT", "-USDC", "-USD"},
		CategoryPrefixes: map[string]models.AssetClass{
			"NCFX": models.AssetForex,
			"NCCO": models.AssetCommodities,
			"NCIX": models.AssetStocks,
			"NCST": models.AssetStocks,
		},
		DenomSuffixes: []string{"2USD", "3USD"},
	},

	// Hyperliquid coins are bare tickers. Several of its crypto listings
	// collide with equity tickers (COIN, HOOD), so the stocks membership
	// check is intentionally skipped for this source.
	"hyperliquid": {SkipStocks: true},

	// Ostium pairs arrive as BASE-USD with shielded variants carrying an
	// SH- prefix. Bare bases (EUR, XAU, SPX) also occur.
	"ostium": {
		QuoteSuffixes:   []string{"-USD", "/USD"},
		WrapperPrefixes: []string{"SH-", "SH_"},
	},
}

// RuleFor returns the decoding rule for a source.
func RuleFor(sourceID string) Rule {
	if r, ok := sourceRules[sourceID]; ok {
		return r
	}
	return genericRule
}
