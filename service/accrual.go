package service

import (
	"math/big"

	"corebank/models"
)

// ComputeInterest returns the interest owed for one period in minor units:
//
//	balance x (rateBps / 10000) x (daysInPeriod / daysInYear)
//
// The whole computation runs in integer arithmetic and rounds the final
// division half-to-even, so the result is bit-reproducible for audit and
// reconciliation. Intermediate products go through big.Int so large balances
// cannot overflow int64 mid-computation.
//
// The balance is the end-of-period snapshot observed at run time; mid-period
// balance changes are deliberately not weighted.
func ComputeInterest(balance, rateBps int64, period models.AccrualPeriod, convention models.DayCountConvention) int64 {
	if balance <= 0 || rateBps <= 0 {
		return 0
	}
	days := period.Days(convention)
	if days <= 0 {
		return 0
	}

	num := new(big.Int).Mul(big.NewInt(balance), big.NewInt(rateBps))
	num.Mul(num, big.NewInt(days))
	den := big.NewInt(10000 * convention.YearDays())

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	// Round half to even on the discarded remainder.
	rem.Lsh(rem, 1)
	switch rem.Cmp(den) {
	case 1:
		quo.Add(quo, big.NewInt(1))
	case 0:
		if quo.Bit(0) == 1 {
			quo.Add(quo, big.NewInt(1))
		}
	}

	return quo.Int64()
}
