package adapter

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors callers can branch on with errors.Is.
var (
	ErrNotProfitable = errors.New("removal yields no profit")
	ErrZeroAmount    = errors.New("amount must be greater than zero")
	ErrNoPosition    = errors.New("adapter holds no pool shares")
	ErrUnauthorized  = errors.New("caller lacks required capability")
)

// ImbalancedError reports a failed pool-direction post-condition along with
// the raw balances observed at check time.
type ImbalancedError struct {
	Stable           *big.Int
	Counter          *big.Int
	WantCounterHeavy bool
}

func (e *ImbalancedError) Error() string {
	want := "stablecoin-heavy"
	if e.WantCounterHeavy {
		want = "counter-asset-heavy"
	}
	return fmt.Sprintf("pool not %s: stable=%s counter=%s", want, e.Stable, e.Counter)
}

// NothingToReconcileError reports a voluntary reconcile that found no surplus
// of pool value over outstanding debt.
type NothingToReconcileError struct {
	Assets *big.Int
	Minted *big.Int
}

func (e *NothingToReconcileError) Error() string {
	return fmt.Sprintf("nothing to reconcile: assets=%s minted=%s", e.Assets, e.Minted)
}
