package coinunits

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Amount represents a quantity of coins in the chain's smallest indivisible
// unit. The native coin family uses a conversion factor of 1e6 minor units per
// coin; the legacy (bitcoin-compatible) family uses 1e8. Several provider
// endpoints report values in the legacy unit, so both factors live here.
type Amount int64

const (
	// UnitsPerCoin is the number of minor units in one native coin.
	UnitsPerCoin = 1e6

	// LegacyUnitsPerCoin is the number of minor units in one coin of the
	// legacy-compatible family.
	LegacyUnitsPerCoin = 1e8
)

// ErrInvalidCoinAmount is returned when a decimal coin value cannot be
// represented as an Amount.
var ErrInvalidCoinAmount = errors.New("invalid coin amount")

// fromCoins converts a decimal coin value to minor units with the given
// factor. The conversion truncates: creating value by rounding up a fraction
// of a minor unit is never acceptable.
func fromCoins(coins float64, factor float64) (Amount, error) {
	if math.IsNaN(coins) || math.IsInf(coins, 0) {
		return 0, errors.Wrapf(ErrInvalidCoinAmount, "%v", coins)
	}
	return Amount(math.Floor(coins * factor)), nil
}

// FromCoins converts a decimal native coin value to minor units, truncating
// any fraction of a minor unit.
func FromCoins(coins float64) (Amount, error) {
	return fromCoins(coins, UnitsPerCoin)
}

// FromLegacyCoins converts a decimal legacy-family coin value to minor units.
func FromLegacyCoins(coins float64) (Amount, error) {
	return fromCoins(coins, LegacyUnitsPerCoin)
}

// FromLegacyUnits converts an integer value held in legacy minor units to
// native minor units, truncating toward negative infinity.
func FromLegacyUnits(legacy int64) Amount {
	const ratio = LegacyUnitsPerCoin / UnitsPerCoin
	quotient := legacy / ratio
	if legacy%ratio != 0 && legacy < 0 {
		quotient--
	}
	return Amount(quotient)
}

// ToCoins returns the decimal native coin value of the amount.
func (a Amount) ToCoins() float64 {
	return float64(a) / UnitsPerCoin
}

// ToLegacyCoins returns the decimal coin value of an amount held in legacy
// minor units.
func (a Amount) ToLegacyCoins() float64 {
	return float64(a) / LegacyUnitsPerCoin
}

// String returns the amount formatted as a decimal native coin value.
func (a Amount) String() string {
	return strconv.FormatFloat(a.ToCoins(), 'f', -1, 64)
}
