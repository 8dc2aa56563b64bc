package pricing

import "github.com/shopspring/decimal"

// roundPlaces is 2 for gram prices and 0 for every bulk unit.
func roundPlaces(unit string) int32 {
	if NormalizeUnit(unit) == UnitGram {
		return 2
	}
	return 0
}

// Round rounds a price for display in the given weight unit, half away
// from zero. It returns the rounded value and its fixed-point text.
func Round(value float64, unit string) (float64, string) {
	places := roundPlaces(unit)
	d := decimal.NewFromFloat(value).Round(places)
	f, _ := d.Float64()
	return f, d.StringFixed(places)
}
