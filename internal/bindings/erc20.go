package bindings

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC20 binds the counter-asset token.
type ERC20 struct {
	contract *bind.BoundContract
	backend  *ethclient.Client
	opts     *bind.TransactOpts
	self     common.Address
}

// NewERC20 binds the token at addr. self is the adapter account that
// receives pulled funds.
func NewERC20(addr common.Address, backend *ethclient.Client, opts *bind.TransactOpts, self common.Address) (*ERC20, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &ERC20{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		self:     self,
	}, nil
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return callBigInt(ctx, t.contract, "balanceOf", owner)
}

func (t *ERC20) Pull(ctx context.Context, from common.Address, amount *big.Int) error {
	return transactAndWait(ctx, t.backend, t.contract, t.opts, "transferFrom", from, t.self, amount)
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("decimals: empty output")
	}
	val, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected output type %T", out[0])
	}
	return val, nil
}
