package symbols

import (
	"testing"

	"DerivPulse/internal/domain/models"
)

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		raw    string
		source string
		symbol string
		class  models.AssetClass
	}{
		// generic crypto perps
		{"BTCUSDT", "binance", "BTC", models.AssetCrypto},
		{"ETHUSDC", "bybit", "ETH", models.AssetCrypto},
		{"SOL-USDT-SWAP", "okx", "SOL", models.AssetCrypto},
		{"1000PEPEUSDT", "binance", "PEPE", models.AssetCrypto},
		{"kSHIB", "hyperliquid", "SHIB", models.AssetCrypto},

		// gateio tokenized equities: residual X stripped before membership
		{"AAPLX_USDT", "gateio", "AAPL", models.AssetStocks},
		{"NVDAX_USDT", "gateio", "NVDA", models.AssetStocks},
		// residual strip must not mangle real crypto tickers
		{"TRX_USDT", "gateio", "TRX", models.AssetCrypto},
		{"AVAX_USDT", "gateio", "AVAX", models.AssetCrypto},

		// bingx category prefix + denomination suffix
		{"NCFXEUR2USD", "bingx", "EURUSD", models.AssetForex},
		{"NCFXJPY2USD", "bingx", "USDJPY", models.AssetForex},
		{"NCCOXAU2USD", "bingx", "XAU", models.AssetCommodities},
		{"NCIXSPX2USD", "bingx", "SPX", models.AssetStocks},
		{"BTC-USDT", "bingx", "BTC", models.AssetCrypto},

		// hyperliquid skips the stocks check despite ticker collisions
		{"COIN", "hyperliquid", "COIN", models.AssetCrypto},
		{"HOOD", "hyperliquid", "HOOD", models.AssetCrypto},
		{"BTC", "hyperliquid", "BTC", models.AssetCrypto},

		// ostium pairs, bare bases, and shielded variants
		{"EUR-USD", "ostium", "EURUSD", models.AssetForex},
		{"EUR", "ostium", "EURUSD", models.AssetForex},
		{"JPY", "ostium", "USDJPY", models.AssetForex},
		{"XAU-USD", "ostium", "XAU", models.AssetCommodities},
		{"SPX-USD", "ostium", "SPX", models.AssetStocks},
		{"SH-NVDA", "ostium", "NVDA", models.AssetStocks},

		// unknown source falls back to the generic rule
		{"DOGEUSDT", "somevenue", "DOGE", models.AssetCrypto},
		{"XAGUSD", "somevenue", "XAG", models.AssetCommodities},
	}

	for _, tc := range cases {
		got := Classify(tc.raw, tc.source)
		if got.Symbol != tc.symbol || got.AssetClass != tc.class {
			t.Errorf("Classify(%q, %q) = {%s %s}, want {%s %s}",
				tc.raw, tc.source, got.Symbol, got.AssetClass, tc.symbol, tc.class)
		}
	}
}

func TestClassifyWrappedUnknownDefaultsToStocks(t *testing.T) {
	got := Classify("SH-ZZZZ", "ostium")
	if got.AssetClass != models.AssetStocks {
		t.Fatalf("wrapped unmatched symbol classified as %s, want stocks", got.AssetClass)
	}
	if got.Symbol != "ZZZZ" {
		t.Fatalf("wrapper prefix not stripped: %s", got.Symbol)
	}
}

func TestClassifyIsPure(t *testing.T) {
	a := Classify("NCFXEUR2USD", "bingx")
	b := Classify("NCFXEUR2USD", "bingx")
	if a != b {
		t.Fatalf("classifier not deterministic: %v vs %v", a, b)
	}
}

// Every known forex pair must classify identically from its base-only form
// and its full pair form.
func TestForexRoundTrip(t *testing.T) {
	for pair := range KnownForex {
		full := Classify(pair, "ostium")
		if full.AssetClass != models.AssetForex {
			t.Errorf("Classify(%q) class = %s, want forex", pair, full.AssetClass)
		}
		if full.Symbol != pair {
			t.Errorf("Classify(%q) symbol = %s, want %s", pair, full.Symbol, pair)
		}

		base, quote := pair[:3], pair[3:]
		bare := base
		if base == "USD" {
			bare = quote
		}
		fromBare := Classify(bare, "ostium")
		if fromBare.AssetClass != models.AssetForex {
			t.Errorf("Classify(%q) class = %s, want forex", bare, fromBare.AssetClass)
			continue
		}
		// Bases whose forward form exists keep it; the reverse form only
		// wins when no forward form is known.
		want := ExpandForexPair(bare)
		if fromBare.Symbol != want {
			t.Errorf("Classify(%q) symbol = %s, want %s", bare, fromBare.Symbol, want)
		}
	}
}

func TestExpandForexPairPrefersForward(t *testing.T) {
	if got := ExpandForexPair("EUR"); got != "EURUSD" {
		t.Fatalf("EUR -> %s, want EURUSD", got)
	}
	if got := ExpandForexPair("JPY"); got != "USDJPY" {
		t.Fatalf("JPY -> %s, want USDJPY", got)
	}
	// unknown base defaults to the forward form
	if got := ExpandForexPair("XYZ"); got != "XYZUSD" {
		t.Fatalf("XYZ -> %s, want XYZUSD", got)
	}
}
