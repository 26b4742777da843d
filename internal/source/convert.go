package source

import (
	"strconv"

	"DerivPulse/internal/domain/models"
)

// Most exchange APIs ship numbers as strings; tolerate both.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// dedupe drops repeated (symbol) entries, keeping the first. Exchanges can
// list the same canonical symbol under several contracts (USDT and USDC
// margined); one record per (symbol, exchange) per cycle is the invariant.
func dedupe(records []models.NormalizedRecord) []models.NormalizedRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r)
	}
	return out
}
