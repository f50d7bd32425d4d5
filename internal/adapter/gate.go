package adapter

import (
	"context"
	"fmt"
	"math/big"
)

// Gate classifies the pool's imbalance direction and enforces it as a
// post-condition on pool-mutating operations.
type Gate struct {
	pool Pool
	ref  PoolReference
}

func NewGate(pool Pool, ref PoolReference) *Gate {
	return &Gate{pool: pool, ref: ref}
}

// Check reports whether the pool is counter-asset-heavy after normalizing the
// counter balance to stablecoin precision. The direction is computed fresh
// from live balances on every call, never cached.
func (g *Gate) Check(ctx context.Context) (bool, error) {
	_, _, counterHeavy, err := g.observe(ctx)
	return counterHeavy, err
}

// Verify fails with ImbalancedError if the live direction does not match the
// expected one. It is invoked after pool-mutating steps: the state observed
// before an operation can differ from the state immediately after.
func (g *Gate) Verify(ctx context.Context, wantCounterHeavy bool) error {
	stable, counter, counterHeavy, err := g.observe(ctx)
	if err != nil {
		return err
	}
	if counterHeavy != wantCounterHeavy {
		return &ImbalancedError{Stable: stable, Counter: counter, WantCounterHeavy: wantCounterHeavy}
	}
	return nil
}

func (g *Gate) observe(ctx context.Context) (*big.Int, *big.Int, bool, error) {
	stable, err := g.pool.Balances(ctx, g.ref.StableIndex)
	if err != nil {
		return nil, nil, false, fmt.Errorf("stable balance: %w", err)
	}
	counter, err := g.pool.Balances(ctx, g.ref.CounterIndex)
	if err != nil {
		return nil, nil, false, fmt.Errorf("counter balance: %w", err)
	}
	normalized := g.ref.ToStableUnits(counter)
	return stable, counter, stable.Cmp(normalized) <= 0, nil
}
