package sim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StableCoin implements the stablecoin collaborator: mint and burn act on
// the adapter's balance, transfers originate from the adapter.
type StableCoin struct {
	env *Env
}

func (c *StableCoin) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return c.env.StableBalance(owner), nil
}

func (c *StableCoin) Mint(_ context.Context, to common.Address, amount *big.Int) error {
	credit(c.env.st.stable, to, amount)
	return nil
}

func (c *StableCoin) Burn(_ context.Context, amount *big.Int) error {
	if !debit(c.env.st.stable, c.env.self, amount) {
		return fmt.Errorf("insufficient stablecoin: have %s want %s", c.env.StableBalance(c.env.self), amount)
	}
	return nil
}

func (c *StableCoin) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	if !debit(c.env.st.stable, c.env.self, amount) {
		return fmt.Errorf("insufficient stablecoin: have %s want %s", c.env.StableBalance(c.env.self), amount)
	}
	credit(c.env.st.stable, to, amount)
	return nil
}

func (c *StableCoin) Pull(_ context.Context, from common.Address, amount *big.Int) error {
	if !debit(c.env.st.stable, from, amount) {
		return fmt.Errorf("insufficient stablecoin: have %s want %s", c.env.StableBalance(from), amount)
	}
	credit(c.env.st.stable, c.env.self, amount)
	return nil
}

// CounterToken implements the counter-asset collaborator.
type CounterToken struct {
	env *Env
}

func (c *CounterToken) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return c.env.CounterBalance(owner), nil
}

func (c *CounterToken) Pull(_ context.Context, from common.Address, amount *big.Int) error {
	if !debit(c.env.st.counter, from, amount) {
		return fmt.Errorf("insufficient counter asset: have %s want %s", c.env.CounterBalance(from), amount)
	}
	credit(c.env.st.counter, c.env.self, amount)
	return nil
}

func (c *CounterToken) Decimals(_ context.Context) (uint8, error) {
	return c.env.ref.CounterDecimals, nil
}
