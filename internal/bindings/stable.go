package bindings

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Stable binds the stablecoin, including the issuer surface restricted to
// authorized modules.
type Stable struct {
	contract *bind.BoundContract
	backend  *ethclient.Client
	opts     *bind.TransactOpts
	self     common.Address
}

// NewStable binds the stablecoin at addr. self is the adapter account.
func NewStable(addr common.Address, backend *ethclient.Client, opts *bind.TransactOpts, self common.Address) (*Stable, error) {
	parsed, err := StableABI()
	if err != nil {
		return nil, fmt.Errorf("parse stable abi: %w", err)
	}
	return &Stable{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		self:     self,
	}, nil
}

func (s *Stable) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return callBigInt(ctx, s.contract, "balanceOf", owner)
}

func (s *Stable) Mint(ctx context.Context, to common.Address, amount *big.Int) error {
	return transactAndWait(ctx, s.backend, s.contract, s.opts, "mintModule", to, amount)
}

func (s *Stable) Burn(ctx context.Context, amount *big.Int) error {
	return transactAndWait(ctx, s.backend, s.contract, s.opts, "burn", amount)
}

func (s *Stable) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return transactAndWait(ctx, s.backend, s.contract, s.opts, "transfer", to, amount)
}

func (s *Stable) Pull(ctx context.Context, from common.Address, amount *big.Int) error {
	return transactAndWait(ctx, s.backend, s.contract, s.opts, "transferFrom", from, s.self, amount)
}
