package math

import (
	"errors"
	"math"
)

var ErrOverflowUint64 = errors.New("uint64 overflow")
var ErrOverflowInt64 = errors.New("int64 overflow")

// SafeAddUint64 adds two uint64 integers.
// If there is an overflow it returns an error.
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflowUint64
	}
	return a + b, nil
}

// SafeMulUint64 multiplies two uint64 integers.
// If there is an overflow it returns an error.
func SafeMulUint64(a, b uint64) (uint64, error) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, ErrOverflowUint64
	}
	return a * b, nil
}

// SafeConvertUint64 takes an int64 and checks if it is negative.
// If it is this will panic.
func SafeConvertUint64(a int64) uint64 {
	if a < 0 {
		panic(ErrOverflowUint64)
	}
	return uint64(a)
}

// SafeConvertInt64 takes a uint64 and checks if it overflows.
// If there is an overflow it returns an error.
func SafeConvertInt64(a uint64) (int64, error) {
	if a > math.MaxInt64 {
		return 0, ErrOverflowInt64
	}
	return int64(a), nil
}
