package pricing

import "strings"

// Weight unit codes.
const (
	UnitGram  = "GM"
	UnitKilo  = "KG"
	UnitTTB   = "TTB"
	UnitTola  = "TOLA"
	UnitOunce = "OZ"
)

// unitMultipliers converts a per-gram price into the price basis of each
// weight unit.
var unitMultipliers = map[string]float64{
	UnitGram:  1,
	UnitKilo:  1000,
	UnitTTB:   116.64,
	UnitTola:  11.664,
	UnitOunce: 31.1034768,
}

// NormalizeUnit upper-cases and trims a weight unit code.
func NormalizeUnit(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ResolveUnitMultiplier returns the multiplier for a weight unit code.
// Unknown codes resolve to 1.
func ResolveUnitMultiplier(code string) float64 {
	if m, ok := unitMultipliers[NormalizeUnit(code)]; ok {
		return m
	}
	return 1
}

// KnownUnit reports whether code is in the conversion table.
func KnownUnit(code string) bool {
	_, ok := unitMultipliers[NormalizeUnit(code)]
	return ok
}
