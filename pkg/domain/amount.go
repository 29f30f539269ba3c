package domain

import (
	"fmt"

	stellaramount "github.com/stellar/go/amount"
)

// Amount is a monetary value in stroops: a scaled integer with seven decimal
// places. All ledger arithmetic happens on this type; floating point never
// touches money.
type Amount int64

// ScaleFactor converts between whole units and stroops.
const ScaleFactor int64 = 10_000_000

// ParseAmount parses a decimal string ("12.5") into stroops. More than seven
// fractional digits is an error, not a rounding.
func ParseAmount(s string) (Amount, error) {
	stroops, err := stellaramount.ParseInt64(s)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	return Amount(stroops), nil
}

// String renders the amount as a decimal string with seven places.
func (a Amount) String() string {
	return stellaramount.StringFromInt64(int64(a))
}

// Int64 returns the raw stroop count.
func (a Amount) Int64() int64 { return int64(a) }

// BasisPoints is a fee rate in hundredths of a percent.
type BasisPoints int64

// BpsDenominator is the number of basis points in a whole.
const BpsDenominator int64 = 10_000

// ApplyBps returns a*(bps/10000), truncating toward zero. Truncation keeps
// the sum of splits no greater than the whole.
func ApplyBps(a Amount, bps BasisPoints) Amount {
	return Amount(int64(a) * int64(bps) / BpsDenominator)
}
