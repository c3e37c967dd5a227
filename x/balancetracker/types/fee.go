package types

import (
	"cosmossdk.io/math"
)

// MaxFeeBps is the fee ceiling in basis points (100%).
const MaxFeeBps = 10_000

// CalculateFee returns the protocol fee owed on a delivery at rate.
// Any non-zero fee policy charges at least one unit on a non-zero rate.
func CalculateFee(rate math.Int, feeBps uint64) math.Int {
	if feeBps == 0 || !rate.IsPositive() {
		return math.ZeroInt()
	}

	// rate = q*MaxFeeBps + r, so floor(rate*bps/MaxFeeBps) = q*bps + floor(r*bps/MaxFeeBps)
	// without forming rate*bps, which may not fit in 256 bits.
	bps := math.NewIntFromUint64(feeBps)
	q := rate.QuoRaw(MaxFeeBps)
	r := rate.ModRaw(MaxFeeBps)
	fee := q.Mul(bps).Add(r.Mul(bps).QuoRaw(MaxFeeBps))
	if fee.IsZero() {
		return math.OneInt()
	}
	return fee
}
