package source

// DefaultFailoverTable maps each provider's primary API host to alternate
// base URLs tried in order when the primary is geo-blocked (403/451) or
// unreachable. Alternates mirror the same REST surface.
var DefaultFailoverTable = map[string][]string{
	"fapi.binance.com":   {"https://fapi1.binance.com", "https://fapi2.binance.com"},
	"api.bybit.com":      {"https://api.bytick.com"},
	"api.gateio.ws":      {"https://fx-api.gateio.ws"},
	"open-api.bingx.com": {"https://open-api.bingx.io"},
}
