package bindings

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// transactAndWait submits a state-changing call and blocks until it is mined,
// surfacing reverts as errors.
func transactAndWait(ctx context.Context, backend *ethclient.Client, contract *bind.BoundContract, opts *bind.TransactOpts, method string, params ...interface{}) error {
	if opts == nil {
		return fmt.Errorf("%s: no transactor configured", method)
	}
	sendOpts := *opts
	sendOpts.Context = ctx

	tx, err := contract.Transact(&sendOpts, method, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return fmt.Errorf("wait %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s reverted: tx %s", method, tx.Hash().Hex())
	}
	return nil
}

func callBigInt(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty output", method)
	}
	val, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return val, nil
}

func callBool(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (bool, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return false, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return false, fmt.Errorf("%s: empty output", method)
	}
	val, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return val, nil
}
