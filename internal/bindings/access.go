package bindings

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Access binds the capability-check contract.
type Access struct {
	contract *bind.BoundContract
}

// NewAccess binds the access-control contract at addr.
func NewAccess(addr common.Address, backend *ethclient.Client) (*Access, error) {
	parsed, err := AccessABI()
	if err != nil {
		return nil, fmt.Errorf("parse access abi: %w", err)
	}
	return &Access{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (a *Access) IsCurator(ctx context.Context, addr common.Address) (bool, error) {
	return callBool(ctx, a.contract, "isCurator", addr)
}

func (a *Access) IsGuardian(ctx context.Context, addr common.Address) (bool, error) {
	return callBool(ctx, a.contract, "isGuardian", addr)
}

func (a *Access) IsModule(ctx context.Context, addr common.Address) (bool, error) {
	return callBool(ctx, a.contract, "isModule", addr)
}
