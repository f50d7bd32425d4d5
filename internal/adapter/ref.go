package adapter

import (
	"fmt"
	"math/big"
)

// StableDecimals is the stablecoin's fixed precision. All internal accounting
// is carried in these units.
const StableDecimals = 18

// PoolReference identifies the two assets inside the pool. Immutable after
// construction.
type PoolReference struct {
	StableIndex     int
	CounterIndex    int
	CounterDecimals uint8
}

// NewPoolReference validates the asset indices and returns the reference.
func NewPoolReference(stableIndex, counterIndex int, counterDecimals uint8) (PoolReference, error) {
	if stableIndex < 0 || stableIndex > 1 {
		return PoolReference{}, fmt.Errorf("stable index out of range: %d", stableIndex)
	}
	if counterIndex < 0 || counterIndex > 1 {
		return PoolReference{}, fmt.Errorf("counter index out of range: %d", counterIndex)
	}
	if stableIndex == counterIndex {
		return PoolReference{}, fmt.Errorf("asset indices must differ: %d", stableIndex)
	}
	if counterDecimals > 36 {
		return PoolReference{}, fmt.Errorf("counter decimals out of range: %d", counterDecimals)
	}
	return PoolReference{
		StableIndex:     stableIndex,
		CounterIndex:    counterIndex,
		CounterDecimals: counterDecimals,
	}, nil
}

// ToStableUnits scales a counter-asset amount to stablecoin precision.
func (r PoolReference) ToStableUnits(amount *big.Int) *big.Int {
	return scaleUnits(amount, r.CounterDecimals, StableDecimals)
}

// scaleUnits converts amount from one decimal precision to another using
// integer arithmetic only: amount * 10^to / 10^from.
func scaleUnits(amount *big.Int, from, to uint8) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	out := new(big.Int).Set(amount)
	if from == to {
		return out
	}
	if to > from {
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(to-from)), nil)
		return out.Mul(out, factor)
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(from-to)), nil)
	return out.Quo(out, factor)
}
