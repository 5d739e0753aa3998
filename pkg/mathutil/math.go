package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal converts an uint64 amount to a decimal.Decimal with no loss of
// precision.
func ToDecimal(x uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
}

// MulDecimal takes two decimal.Decimal numbers and multiply them x * y and returns the result as decimal.Decimal
func MulDecimal(X, Y decimal.Decimal) (z decimal.Decimal) {
	z = X.Mul(Y)
	return
}

// QuoDecimal takes two decimal.Decimal numbers and returns the integer
// quotient and the remainder of x / y. The quotient is truncated toward zero.
func QuoDecimal(X, Y decimal.Decimal) (q, r decimal.Decimal) {
	q, r = X.QuoRem(Y, 0)
	return
}

// ProRata returns floor(amount * weight / total) computed with arbitrary
// precision, so that the intermediate product never overflows. It returns 0
// if total is 0. The caller must ensure weight <= total for the result to fit
// an uint64.
func ProRata(amount, weight, total uint64) uint64 {
	if total == 0 || weight == 0 || amount == 0 {
		return 0
	}

	product := MulDecimal(ToDecimal(amount), ToDecimal(weight))
	share, _ := QuoDecimal(product, ToDecimal(total))

	return share.BigInt().Uint64()
}
