package sim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool implements the adapter's pool interface over the environment. Share
// prices follow the configured virtual price; deposits and withdrawals move
// the raw balances so imbalance direction responds the way a live pool would.
type Pool struct {
	env *Env
}

func (p *Pool) Balances(_ context.Context, index int) (*big.Int, error) {
	if index < 0 || index > 1 {
		return nil, fmt.Errorf("balance index out of range: %d", index)
	}
	return new(big.Int).Set(p.env.st.poolBalances[index]), nil
}

func (p *Pool) VirtualPrice(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(p.env.st.virtualPrice), nil
}

// AddLiquidity deposits both assets from the adapter account and mints shares
// worth the deposit's total stablecoin value at the virtual price.
func (p *Pool) AddLiquidity(_ context.Context, amounts [2]*big.Int, minShares *big.Int) (*big.Int, error) {
	env := p.env
	value := big.NewInt(0)
	for index, amount := range amounts {
		if amount == nil || amount.Sign() == 0 {
			continue
		}
		held := env.st.stable
		if index == env.ref.CounterIndex {
			held = env.st.counter
		}
		if !debit(held, env.self, amount) {
			return nil, fmt.Errorf("insufficient deposit balance at index %d: want %s", index, amount)
		}
		value.Add(value, env.convert(amount, index, env.ref.StableIndex))
		env.st.poolBalances[index].Add(env.st.poolBalances[index], amount)
	}

	shares := new(big.Int).Mul(value, stableUnit())
	shares.Quo(shares, env.st.virtualPrice)
	if minShares != nil && shares.Cmp(minShares) < 0 {
		return nil, fmt.Errorf("deposit below minimum: %s < %s", shares, minShares)
	}

	credit(env.st.shares, env.self, shares)
	env.st.totalShares.Add(env.st.totalShares, shares)
	return shares, nil
}

// RemoveLiquidityOneCoin redeems shares held by the adapter for a single
// asset at the virtual price.
func (p *Pool) RemoveLiquidityOneCoin(_ context.Context, shares *big.Int, index int, minAmount *big.Int) (*big.Int, error) {
	env := p.env
	if index < 0 || index > 1 {
		return nil, fmt.Errorf("withdraw index out of range: %d", index)
	}
	if !debit(env.st.shares, env.self, shares) {
		return nil, fmt.Errorf("insufficient shares: have %s want %s", env.ShareBalance(env.self), shares)
	}
	env.st.totalShares.Sub(env.st.totalShares, shares)

	value := new(big.Int).Mul(shares, env.st.virtualPrice)
	value.Quo(value, stableUnit())
	amount := env.convert(value, env.ref.StableIndex, index)
	if minAmount != nil && amount.Cmp(minAmount) < 0 {
		return nil, fmt.Errorf("withdrawal below minimum: %s < %s", amount, minAmount)
	}
	if env.st.poolBalances[index].Cmp(amount) < 0 {
		return nil, fmt.Errorf("pool reserve too low: have %s want %s", env.st.poolBalances[index], amount)
	}
	env.st.poolBalances[index].Sub(env.st.poolBalances[index], amount)

	if index == env.ref.StableIndex {
		credit(env.st.stable, env.self, amount)
	} else {
		credit(env.st.counter, env.self, amount)
	}
	return amount, nil
}

func (p *Pool) SharesOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return p.env.ShareBalance(owner), nil
}

func (p *Pool) TransferShares(_ context.Context, to common.Address, amount *big.Int) error {
	env := p.env
	if !debit(env.st.shares, env.self, amount) {
		return fmt.Errorf("insufficient shares: have %s want %s", env.ShareBalance(env.self), amount)
	}
	credit(env.st.shares, to, amount)
	return nil
}

func (p *Pool) PullShares(_ context.Context, from common.Address, amount *big.Int) error {
	env := p.env
	if !debit(env.st.shares, from, amount) {
		return fmt.Errorf("insufficient shares: have %s want %s", env.ShareBalance(from), amount)
	}
	credit(env.st.shares, env.self, amount)
	return nil
}

func stableUnit() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}
