package bindings

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Sink binds an on-chain revenue distributor.
type Sink struct {
	contract *bind.BoundContract
	backend  *ethclient.Client
	opts     *bind.TransactOpts
}

// NewSink binds the distributor at addr.
func NewSink(addr common.Address, backend *ethclient.Client, opts *bind.TransactOpts) (*Sink, error) {
	parsed, err := DistributorABI()
	if err != nil {
		return nil, fmt.Errorf("parse distributor abi: %w", err)
	}
	return &Sink{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		opts:     opts,
	}, nil
}

func (s *Sink) Distribute(ctx context.Context) error {
	return transactAndWait(ctx, s.backend, s.contract, s.opts, "distribute")
}
