/*
This file contains common utility functions for converting between float
configuration values, SDK fixed-point decimals, and basis-point yields.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrNotFinite     = errors.New("value is not finite")
	ErrValueNegative = errors.New("value is negative")
)

// Float64ToLegacyDec converts a float to a fixed-point decimal pinned to 12
// decimal places. The string round-trip avoids binary float artifacts, so
// downstream integer splits behave identically across platforms.
func Float64ToLegacyDec(value float64) (sdkmath.LegacyDec, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %f", ErrNotFinite, value)
	}
	if value < 0 {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %f", ErrValueNegative, value)
	}

	dec, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.12f", value))
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("failed to create decimal from %f: %w", value, err)
	}
	return dec, nil
}

// MustFloat64ToLegacyDec is Float64ToLegacyDec for values already validated
// upstream. It panics on input that validation should have rejected.
func MustFloat64ToLegacyDec(value float64) sdkmath.LegacyDec {
	dec, err := Float64ToLegacyDec(value)
	if err != nil {
		panic(err)
	}
	return dec
}

// BasisPointsToFraction converts an annualized basis-point yield into a
// plain fraction (100 bp -> 0.01).
func BasisPointsToFraction(bp float64) float64 {
	return bp / 10000.0
}

// BasisPointsToPeriodReturn converts an annualized basis-point yield into
// the fractional return of a single period.
func BasisPointsToPeriodReturn(bp float64, periodsPerYear int) float64 {
	return BasisPointsToFraction(bp) / float64(periodsPerYear)
}
