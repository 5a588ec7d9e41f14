package types

// All monetary amounts in the system are int64 values in minor currency
// units (e.g. paise). No floating point representation of money exists
// anywhere in this core.

// MinorUnitsPerMajor is the number of minor units in one major unit.
const MinorUnitsPerMajor int64 = 100

// DisplayAmount converts minor units to whole major units. Stored amounts
// are always whole minor units so the integer division is exact.
func DisplayAmount(amount int64) int64 {
	return amount / MinorUnitsPerMajor
}

// PercentOf returns pct percent of amount, flooring toward zero. Flooring
// protects against over-paying by a fractional minor unit.
func PercentOf(amount int64, pct int64) int64 {
	return amount * pct / 100
}
