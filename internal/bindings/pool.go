package bindings

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// BalanceReader reads a token balance. The pool uses it to measure proceeds
// of single-asset withdrawals by balance delta.
type BalanceReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Pool binds a StableSwap-style pool whose LP share token is the pool
// contract itself. State-changing methods require a transactor; the pool's
// own return values are recovered as balance deltas around the mined call.
type Pool struct {
	contract *bind.BoundContract
	backend  *ethclient.Client
	opts     *bind.TransactOpts
	self     common.Address
	coins    [2]BalanceReader
}

// NewPool binds the pool at addr. self is the adapter account; coins holds
// balance readers for the pool's two assets by index.
func NewPool(addr common.Address, backend *ethclient.Client, opts *bind.TransactOpts, self common.Address, coins [2]BalanceReader) (*Pool, error) {
	parsed, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return &Pool{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		self:     self,
		coins:    coins,
	}, nil
}

func (p *Pool) Balances(ctx context.Context, index int) (*big.Int, error) {
	return callBigInt(ctx, p.contract, "balances", big.NewInt(int64(index)))
}

func (p *Pool) VirtualPrice(ctx context.Context) (*big.Int, error) {
	return callBigInt(ctx, p.contract, "get_virtual_price")
}

func (p *Pool) AddLiquidity(ctx context.Context, amounts [2]*big.Int, minShares *big.Int) (*big.Int, error) {
	deposit := [2]*big.Int{big.NewInt(0), big.NewInt(0)}
	for i, amount := range amounts {
		if amount != nil {
			deposit[i] = amount
		}
	}

	before, err := p.SharesOf(ctx, p.self)
	if err != nil {
		return nil, err
	}
	if err := transactAndWait(ctx, p.backend, p.contract, p.opts, "add_liquidity", deposit, minShares); err != nil {
		return nil, err
	}
	after, err := p.SharesOf(ctx, p.self)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(after, before), nil
}

func (p *Pool) RemoveLiquidityOneCoin(ctx context.Context, shares *big.Int, index int, minAmount *big.Int) (*big.Int, error) {
	coin := p.coins[index]
	if coin == nil {
		return nil, fmt.Errorf("no balance reader for coin %d", index)
	}

	before, err := coin.BalanceOf(ctx, p.self)
	if err != nil {
		return nil, err
	}
	if err := transactAndWait(ctx, p.backend, p.contract, p.opts, "remove_liquidity_one_coin", shares, big.NewInt(int64(index)), minAmount); err != nil {
		return nil, err
	}
	after, err := coin.BalanceOf(ctx, p.self)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(after, before), nil
}

func (p *Pool) SharesOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return callBigInt(ctx, p.contract, "balanceOf", owner)
}

func (p *Pool) TransferShares(ctx context.Context, to common.Address, amount *big.Int) error {
	return transactAndWait(ctx, p.backend, p.contract, p.opts, "transfer", to, amount)
}

func (p *Pool) PullShares(ctx context.Context, from common.Address, amount *big.Int) error {
	return transactAndWait(ctx, p.backend, p.contract, p.opts, "transferFrom", from, p.self, amount)
}
