package symbols

// Canonical membership sets shared by every source rule. A raw symbol that
// survives the per-source strip steps is checked against these in order:
// stocks, forex, commodities. Anything matching none is crypto.

// KnownStocks holds canonical tickers of equities that appear as tokenized
// or synthetic contracts on at least one covered exchange.
var KnownStocks = makeSet(
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "AMD", "INTC",
	"NFLX", "COIN", "HOOD", "MSTR", "PLTR", "GME", "AMC", "BABA", "UBER",
	"DIS", "PYPL", "SQ", "SHOP", "SNAP", "ABNB", "RIVN", "LCID", "NIO",
	"F", "GM", "BA", "JPM", "GS", "V", "MA", "KO", "PEP", "MCD", "NKE",
	"WMT", "CRM", "ORCL", "IBM", "CSCO", "QCOM", "AVGO", "TSM", "ARM",
	"SPY", "QQQ", "SPX", "NDX", "DJI", "US500", "US100", "US30",
)

// KnownForex holds canonical pair spellings. Both XXXUSD and USDXXX forms
// appear here; base-only raw symbols are expanded against this set.
var KnownForex = makeSet(
	"EURUSD", "GBPUSD", "AUDUSD", "NZDUSD",
	"USDJPY", "USDCHF", "USDCAD", "USDCNH", "USDSGD", "USDMXN", "USDTRY",
	"USDSEK", "USDNOK", "USDZAR", "USDHKD", "USDKRW", "USDINR", "USDBRL",
	"EURGBP", "EURJPY", "EURCHF", "GBPJPY", "AUDJPY",
)

// KnownCommodities holds canonical commodity tickers.
var KnownCommodities = makeSet(
	"XAU", "XAG", "XPT", "XPD", "XCU",
	"WTI", "BRENT", "NGAS", "UKOIL", "USOIL",
)

// forexBases is derived from KnownForex: every currency that appears as the
// non-USD leg of a known pair. Used to expand bare base symbols like "EUR".
var forexBases = buildForexBases()

func makeSet(members ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

func buildForexBases() map[string]struct{} {
	s := make(map[string]struct{}, len(KnownForex))
	for pair := range KnownForex {
		if len(pair) != 6 {
			continue
		}
		base, quote := pair[:3], pair[3:]
		if quote == "USD" {
			s[base] = struct{}{}
		}
		if base == "USD" {
			s[quote] = struct{}{}
		}
	}
	return s
}

// ExpandForexPair maps a bare base currency to its canonical pair form.
// When both XXXUSD and USDXXX exist in KnownForex the already-canonical
// forward form wins; otherwise whichever form is known; default forward.
func ExpandForexPair(base string) string {
	if _, ok := KnownForex[base]; ok {
		return base
	}
	forward := base + "USD"
	if _, ok := KnownForex[forward]; ok {
		return forward
	}
	reverse := "USD" + base
	if _, ok := KnownForex[reverse]; ok {
		return reverse
	}
	return forward
}
