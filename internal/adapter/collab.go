package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/USDU-Core/usdu-core/internal/model"
)

// Pool is the adapter's view of the external two-asset AMM pool and its LP
// share token. Implementations mutate external state; every method is a
// potential reentry point and must be treated as such by callers.
type Pool interface {
	Balances(ctx context.Context, index int) (*big.Int, error)
	VirtualPrice(ctx context.Context) (*big.Int, error)
	AddLiquidity(ctx context.Context, amounts [2]*big.Int, minShares *big.Int) (*big.Int, error)
	RemoveLiquidityOneCoin(ctx context.Context, shares *big.Int, index int, minAmount *big.Int) (*big.Int, error)
	SharesOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TransferShares(ctx context.Context, to common.Address, amount *big.Int) error
	PullShares(ctx context.Context, from common.Address, amount *big.Int) error
}

// Stablecoin is the issuer-facing surface of the stablecoin. Mint is
// restricted to the adapter acting as an authorized module; Burn destroys
// tokens held by the adapter itself.
type Stablecoin interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Mint(ctx context.Context, to common.Address, amount *big.Int) error
	Burn(ctx context.Context, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	Pull(ctx context.Context, from common.Address, amount *big.Int) error
}

// Token is the pool's counter asset.
type Token interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Pull(ctx context.Context, from common.Address, amount *big.Int) error
	Decimals(ctx context.Context) (uint8, error)
}

// RevenueSink receives the distribute-now signal once debt is fully paid off.
// Implementations split the adapter's free stablecoin balance among
// configured recipients and must surface insufficient-balance failures.
type RevenueSink interface {
	Distribute(ctx context.Context) error
}

// AccessControl exposes capability checks consulted before privileged
// operations.
type AccessControl interface {
	IsCurator(ctx context.Context, addr common.Address) (bool, error)
	IsGuardian(ctx context.Context, addr common.Address) (bool, error)
	IsModule(ctx context.Context, addr common.Address) (bool, error)
}

// Snapshotter is implemented by collaborator environments that can roll back
// their state as a unit. When present, the adapter wraps every public
// operation in a snapshot so a failure leaves no observable effect.
type Snapshotter interface {
	Snapshot() int
	Rollback(rev int)
}

// Journal records completed operations.
type Journal interface {
	Append(ctx context.Context, rec model.OperationRecord) error
}

// LedgerStore persists ledger state across restarts.
type LedgerStore interface {
	Load(ctx context.Context) (model.LedgerState, bool, error)
	Save(ctx context.Context, state model.LedgerState) error
}
