package adapter

import "math/big"

// Profitability returns the profit remaining from split after covering the
// debt attributable to the adapter's LP reduction:
//
//	requiredPayback = totalMinted * (beforeLP - afterLP) / beforeLP
//	profit          = split - requiredPayback, clamped at zero
//
// The multiplication happens before the division so the proportional payback
// is floored exactly once. Fails with ErrNoPosition when beforeLP is zero.
func Profitability(totalMinted, beforeLP, afterLP, split *big.Int) (*big.Int, error) {
	payback, err := Burnable(totalMinted, beforeLP, afterLP)
	if err != nil {
		return nil, err
	}
	if split != nil && split.Cmp(payback) > 0 {
		return new(big.Int).Sub(split, payback), nil
	}
	return big.NewInt(0), nil
}

// Burnable returns the debt fraction attributable to the LP value reduction
// from beforeLP to afterLP: totalMinted * (beforeLP - afterLP) / beforeLP.
// Used by emergency paths as a debt-coverage estimate.
func Burnable(totalMinted, beforeLP, afterLP *big.Int) (*big.Int, error) {
	if beforeLP == nil || beforeLP.Sign() == 0 {
		return nil, ErrNoPosition
	}
	delta := new(big.Int).Sub(beforeLP, afterLP)
	if delta.Sign() <= 0 || totalMinted == nil {
		return big.NewInt(0), nil
	}
	out := new(big.Int).Mul(totalMinted, delta)
	return out.Quo(out, beforeLP), nil
}
