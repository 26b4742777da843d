// Package symbols normalizes raw per-exchange symbols into canonical
// tickers with an asset class. Classification is a pure function of
// (rawSymbol, sourceID): no I/O, no mutable state.
package symbols

import (
	"strings"

	"DerivPulse/internal/domain/models"
)

// ClassifiedSymbol is the transient output of Classify.
type ClassifiedSymbol struct {
	Symbol     string
	AssetClass models.AssetClass
}

// Classify maps a raw symbol from a given source to its canonical form.
func Classify(rawSymbol, sourceID string) ClassifiedSymbol {
	rule := RuleFor(sourceID)

	sym := stripScaleMarkers(strings.TrimSpace(rawSymbol))
	sym = strings.ToUpper(sym)

	sym = stripOneSuffix(sym, rule.QuoteSuffixes)

	wrapped := false
	for _, p := range rule.WrapperPrefixes {
		if strings.HasPrefix(sym, p) && len(sym) > len(p) {
			sym = sym[len(p):]
			wrapped = true
			break
		}
	}

	forced := models.AssetClass("")
	for p, class := range rule.CategoryPrefixes {
		if strings.HasPrefix(sym, p) && len(sym) > len(p) {
			sym = sym[len(p):]
			forced = class
			break
		}
	}

	sym = stripOneSuffix(sym, rule.DenomSuffixes)

	if forced != "" {
		return classifyForced(sym, forced)
	}

	// The residual-suffix strip is speculative: the stripped form is
	// preferred only when a canonical set confirms it.
	candidates := []string{sym}
	if stripped := stripOneSuffix(sym, rule.ResidualSuffixes); stripped != sym {
		candidates = []string{stripped, sym}
	}

	for _, cand := range candidates {
		if cs, ok := classifyMembership(cand, rule.SkipStocks); ok {
			return cs
		}
	}

	if wrapped {
		return ClassifiedSymbol{Symbol: sym, AssetClass: models.AssetStocks}
	}
	return ClassifiedSymbol{Symbol: sym, AssetClass: models.AssetCrypto}
}

func classifyForced(sym string, class models.AssetClass) ClassifiedSymbol {
	if class == models.AssetForex {
		return ClassifiedSymbol{Symbol: ExpandForexPair(sym), AssetClass: models.AssetForex}
	}
	return ClassifiedSymbol{Symbol: sym, AssetClass: class}
}

func classifyMembership(sym string, skipStocks bool) (ClassifiedSymbol, bool) {
	if !skipStocks {
		if _, ok := KnownStocks[sym]; ok {
			return ClassifiedSymbol{Symbol: sym, AssetClass: models.AssetStocks}, true
		}
	}
	if _, ok := KnownForex[sym]; ok {
		return ClassifiedSymbol{Symbol: sym, AssetClass: models.AssetForex}, true
	}
	if _, ok := forexBases[sym]; ok {
		return ClassifiedSymbol{Symbol: ExpandForexPair(sym), AssetClass: models.AssetForex}, true
	}
	if _, ok := KnownCommodities[sym]; ok {
		return ClassifiedSymbol{Symbol: sym, AssetClass: models.AssetCommodities}, true
	}
	return ClassifiedSymbol{}, false
}

func stripOneSuffix(sym string, suffixes []string) string {
	best := ""
	for _, s := range suffixes {
		if strings.HasSuffix(sym, s) && len(sym) > len(s) && len(s) > len(best) {
			best = s
		}
	}
	return strings.TrimSuffix(sym, best)
}

// stripScaleMarkers removes numeric precision markers some venues attach
// to low-priced coins: a 1000x multiplier prefix (1000PEPE) or a
// lowercase-k prefix ahead of an uppercase ticker (kSHIB).
func stripScaleMarkers(raw string) string {
	for _, m := range []string{"1000000", "100000", "10000", "1000"} {
		if strings.HasPrefix(raw, m) && len(raw) > len(m)+1 {
			return raw[len(m):]
		}
	}
	if len(raw) > 2 && raw[0] == 'k' && raw[1:] == strings.ToUpper(raw[1:]) {
		return raw[1:]
	}
	return raw
}
