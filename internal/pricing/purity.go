package pricing

import (
	"math"
	"strconv"
)

// ResolvePurity turns a purity code into a fraction by dividing it by ten
// raised to its digit count: 9999 -> 0.9999, 916 -> 0.916, 22 -> 0.22.
// Codes that are not positive integers resolve to 1.
func ResolvePurity(code float64) float64 {
	if math.IsNaN(code) || math.IsInf(code, 0) || code <= 0 || code != math.Trunc(code) {
		return 1
	}
	if code > math.MaxInt64/10 {
		return 1
	}
	digits := len(strconv.FormatInt(int64(code), 10))
	return code / math.Pow10(digits)
}
