package adapter

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/USDU-Core/usdu-core/internal/model"
)

var (
	two     = big.NewInt(2)
	vpScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(StableDecimals), nil)
)

// Deps bundles the external collaborators the adapter operates against.
// Env, Journal, and Store are optional.
type Deps struct {
	Pool    Pool
	Stable  Stablecoin
	Counter Token
	Sink    RevenueSink
	Access  AccessControl
	Env     Snapshotter
	Journal Journal
	Store   LedgerStore
}

// Adapter orchestrates gated liquidity provisioning against the pool and
// keeps the debt ledger reconciled with realized pool value.
type Adapter struct {
	ref    PoolReference
	self   common.Address
	deps   Deps
	gate   *Gate
	ledger *Ledger
	logger *zap.Logger
}

// New builds an Adapter. self is the account that owns the adapter's share
// position and token balances. A nil ledger starts from zero.
func New(ref PoolReference, self common.Address, deps Deps, ledger *Ledger, logger *zap.Logger) *Adapter {
	if ledger == nil {
		ledger = NewLedger()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		ref:    ref,
		self:   self,
		deps:   deps,
		gate:   NewGate(deps.Pool, ref),
		ledger: ledger,
		logger: logger,
	}
}

// Ledger exposes the adapter's debt ledger for read access.
func (a *Adapter) Ledger() *Ledger { return a.ledger }

// Gate exposes the imbalance gate for read-only checks.
func (a *Adapter) Gate() *Gate { return a.gate }

// Ref returns the immutable pool reference.
func (a *Adapter) Ref() PoolReference { return a.ref }

// AddResult reports the effects of a successful AddLiquidity.
type AddResult struct {
	StableMinted   *big.Int
	SharesTotal    *big.Int
	SharesToCaller *big.Int
}

// AddLiquidity supplies paired liquidity on behalf of caller. The caller pays
// counterAmount of the counter asset; the adapter mints the decimal-scaled
// stablecoin equivalent as debt, deposits both sides, requires the pool to
// end counter-asset-heavy, and returns half the received shares to the
// caller.
func (a *Adapter) AddLiquidity(ctx context.Context, caller common.Address, counterAmount, minShares *big.Int) (AddResult, error) {
	if counterAmount == nil || counterAmount.Sign() <= 0 {
		return AddResult{}, ErrZeroAmount
	}
	if minShares == nil {
		minShares = big.NewInt(0)
	}

	var res AddResult
	err := a.run(func() error {
		stableAmount := a.ref.ToStableUnits(counterAmount)

		if err := a.deps.Counter.Pull(ctx, caller, counterAmount); err != nil {
			return fmt.Errorf("pull counter asset: %w", err)
		}
		if err := a.deps.Stable.Mint(ctx, a.self, stableAmount); err != nil {
			return fmt.Errorf("mint stablecoin: %w", err)
		}
		a.ledger.recordMint(stableAmount)

		var amounts [2]*big.Int
		amounts[a.ref.StableIndex] = stableAmount
		amounts[a.ref.CounterIndex] = counterAmount
		// The doubled minimum reflects that half the shares go back to the
		// caller and half stay as the adapter's reserve.
		minTotal := new(big.Int).Mul(minShares, two)
		shares, err := a.deps.Pool.AddLiquidity(ctx, amounts, minTotal)
		if err != nil {
			return fmt.Errorf("add liquidity: %w", err)
		}

		if err := a.gate.Verify(ctx, true); err != nil {
			return err
		}

		half := new(big.Int).Quo(shares, two)
		if err := a.deps.Pool.TransferShares(ctx, caller, half); err != nil {
			return fmt.Errorf("transfer shares: %w", err)
		}

		res = AddResult{StableMinted: stableAmount, SharesTotal: shares, SharesToCaller: half}
		return nil
	})
	if err != nil {
		return AddResult{}, err
	}

	a.commit(ctx, model.OperationRecord{
		Kind:         model.OpAddLiquidity,
		Caller:       caller.Hex(),
		CounterIn:    counterAmount.String(),
		StableMinted: res.StableMinted.String(),
		SharesOut:    res.SharesToCaller.String(),
	})
	a.logger.Info("liquidity added",
		zap.String("caller", caller.Hex()),
		zap.String("counter_in", counterAmount.String()),
		zap.String("stable_minted", res.StableMinted.String()),
		zap.String("shares_total", res.SharesTotal.String()),
	)
	return res, nil
}

// RemoveResult reports the effects of a successful RemoveLiquidity.
type RemoveResult struct {
	Proceeds *big.Int
	Paid     *big.Int
	Profit   *big.Int
	Burned   *big.Int
}

// RemoveLiquidity redeems caller shares plus an equal amount from the
// adapter's reserve as stablecoin only, requires the pool to end
// stablecoin-heavy, and splits the proceeds: half to the caller, half
// retained and reconciled against debt. Fails with ErrNotProfitable when the
// retained half does not exceed the proportional debt payback.
func (a *Adapter) RemoveLiquidity(ctx context.Context, caller common.Address, lpAmount, minStable *big.Int) (RemoveResult, error) {
	if lpAmount == nil || lpAmount.Sign() <= 0 {
		return RemoveResult{}, ErrZeroAmount
	}
	if minStable == nil {
		minStable = big.NewInt(0)
	}

	var res RemoveResult
	err := a.run(func() error {
		if err := a.deps.Pool.PullShares(ctx, caller, lpAmount); err != nil {
			return fmt.Errorf("pull shares: %w", err)
		}

		beforeLP, err := a.deps.Pool.SharesOf(ctx, a.self)
		if err != nil {
			return fmt.Errorf("share balance: %w", err)
		}

		combined := new(big.Int).Mul(lpAmount, two)
		proceeds, err := a.deps.Pool.RemoveLiquidityOneCoin(ctx, combined, a.ref.StableIndex, minStable)
		if err != nil {
			return fmt.Errorf("remove liquidity: %w", err)
		}

		afterLP, err := a.deps.Pool.SharesOf(ctx, a.self)
		if err != nil {
			return fmt.Errorf("share balance: %w", err)
		}

		if err := a.gate.Verify(ctx, false); err != nil {
			return err
		}

		split := new(big.Int).Quo(proceeds, two)
		profit, err := Profitability(a.ledger.TotalMinted(), beforeLP, afterLP, split)
		if err != nil {
			return err
		}
		if profit.Sign() == 0 {
			return ErrNotProfitable
		}
		a.ledger.recordRevenue(profit)

		if err := a.deps.Stable.Transfer(ctx, caller, split); err != nil {
			return fmt.Errorf("pay caller: %w", err)
		}

		retained := new(big.Int).Sub(proceeds, split)
		burned, err := a.reconcile(ctx, retained)
		if err != nil {
			return err
		}

		res = RemoveResult{Proceeds: proceeds, Paid: split, Profit: profit, Burned: burned}
		return nil
	})
	if err != nil {
		return RemoveResult{}, err
	}

	a.commit(ctx, model.OperationRecord{
		Kind:     model.OpRemoveLiquidity,
		Caller:   caller.Hex(),
		SharesIn: lpAmount.String(),
		Proceeds: res.Proceeds.String(),
		Profit:   res.Profit.String(),
		Burned:   res.Burned.String(),
	})
	a.logger.Info("liquidity removed",
		zap.String("caller", caller.Hex()),
		zap.String("shares_in", lpAmount.String()),
		zap.String("proceeds", res.Proceeds.String()),
		zap.String("profit", res.Profit.String()),
		zap.String("burned", res.Burned.String()),
	)
	return res, nil
}

// Reconcile values the adapter's held shares at the live virtual price and
// applies any surplus over outstanding debt toward paying it down. Callable
// by anyone; fails with NothingToReconcileError when no surplus exists.
func (a *Adapter) Reconcile(ctx context.Context) (*big.Int, error) {
	var burned *big.Int
	err := a.run(func() error {
		shares, err := a.deps.Pool.SharesOf(ctx, a.self)
		if err != nil {
			return fmt.Errorf("share balance: %w", err)
		}
		price, err := a.deps.Pool.VirtualPrice(ctx)
		if err != nil {
			return fmt.Errorf("virtual price: %w", err)
		}

		assets := new(big.Int).Mul(shares, price)
		assets.Quo(assets, vpScale)

		minted := a.ledger.TotalMinted()
		amount := new(big.Int).Sub(assets, minted)
		if amount.Sign() <= 0 {
			return &NothingToReconcileError{Assets: assets, Minted: minted}
		}

		burned, err = a.reconcile(ctx, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.commit(ctx, model.OperationRecord{
		Kind:   model.OpReconcile,
		Caller: a.self.Hex(),
		Burned: burned.String(),
	})
	a.logger.Info("reconciled", zap.String("burned", burned.String()))
	return burned, nil
}

// ReduceMint lets any caller voluntarily supply stablecoin to pay down debt.
func (a *Adapter) ReduceMint(ctx context.Context, caller common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	var burned *big.Int
	err := a.run(func() error {
		if err := a.deps.Stable.Pull(ctx, caller, amount); err != nil {
			return fmt.Errorf("pull stablecoin: %w", err)
		}
		var err error
		burned, err = a.reconcile(ctx, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.commit(ctx, model.OperationRecord{
		Kind:   model.OpReduceMint,
		Caller: caller.Hex(),
		Burned: burned.String(),
	})
	a.logger.Info("mint reduced", zap.String("caller", caller.Hex()), zap.String("burned", burned.String()))
	return burned, nil
}

// EmergencyRedeem withdraws adapter-held shares as stablecoin without the
// imbalance or profitability gates and applies the attributable debt fraction
// against the ledger. Guardian only.
func (a *Adapter) EmergencyRedeem(ctx context.Context, caller common.Address, shares, minStable *big.Int) (*big.Int, error) {
	ok, err := a.deps.Access.IsGuardian(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("guardian check: %w", err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if minStable == nil {
		minStable = big.NewInt(0)
	}

	var proceeds *big.Int
	var burned = big.NewInt(0)
	err = a.run(func() error {
		beforeLP, err := a.deps.Pool.SharesOf(ctx, a.self)
		if err != nil {
			return fmt.Errorf("share balance: %w", err)
		}

		proceeds, err = a.deps.Pool.RemoveLiquidityOneCoin(ctx, shares, a.ref.StableIndex, minStable)
		if err != nil {
			return fmt.Errorf("remove liquidity: %w", err)
		}

		afterLP, err := a.deps.Pool.SharesOf(ctx, a.self)
		if err != nil {
			return fmt.Errorf("share balance: %w", err)
		}

		estimate, err := Burnable(a.ledger.TotalMinted(), beforeLP, afterLP)
		if err != nil {
			return err
		}
		apply := estimate
		if proceeds.Cmp(apply) < 0 {
			apply = proceeds
		}
		if apply.Sign() > 0 {
			burned, err = a.reconcile(ctx, apply)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.commit(ctx, model.OperationRecord{
		Kind:     model.OpEmergencyRedeem,
		Caller:   caller.Hex(),
		SharesIn: shares.String(),
		Proceeds: proceeds.String(),
		Burned:   burned.String(),
	})
	a.logger.Warn("emergency redeem",
		zap.String("caller", caller.Hex()),
		zap.String("shares", shares.String()),
		zap.String("proceeds", proceeds.String()),
		zap.String("burned", burned.String()),
	)
	return proceeds, nil
}

// reconcile applies amount of available stablecoin against outstanding debt.
// Full payoff burns exactly the outstanding debt and hands the surplus to the
// revenue sink; partial payoff burns amount and leaves debt outstanding.
// Ledger mutations happen before the external burn and distribute calls.
func (a *Adapter) reconcile(ctx context.Context, amount *big.Int) (*big.Int, error) {
	minted := a.ledger.TotalMinted()
	if minted.Cmp(amount) <= 0 {
		if minted.Sign() == 0 {
			return big.NewInt(0), nil
		}
		a.ledger.clearMinted()
		if err := a.deps.Stable.Burn(ctx, minted); err != nil {
			return nil, fmt.Errorf("burn stablecoin: %w", err)
		}
		if err := a.deps.Sink.Distribute(ctx); err != nil {
			return nil, fmt.Errorf("distribute revenue: %w", err)
		}
		return minted, nil
	}

	a.ledger.payDown(amount)
	if err := a.deps.Stable.Burn(ctx, amount); err != nil {
		return nil, fmt.Errorf("burn stablecoin: %w", err)
	}
	return new(big.Int).Set(amount), nil
}

// run wraps an operation in an all-or-nothing boundary: the ledger snapshot
// is restored on failure, and when the collaborator environment supports
// rollback the whole environment is reverted with it.
func (a *Adapter) run(op func() error) error {
	snap := a.ledger.snapshot()
	var rev int
	if a.deps.Env != nil {
		rev = a.deps.Env.Snapshot()
	}
	if err := op(); err != nil {
		a.ledger.restore(snap)
		if a.deps.Env != nil {
			a.deps.Env.Rollback(rev)
		}
		return err
	}
	return nil
}

// commit records a completed operation. Journal and store failures do not
// undo the operation; they are logged and the caller's result stands.
func (a *Adapter) commit(ctx context.Context, rec model.OperationRecord) {
	rec.TotalMinted = a.ledger.TotalMinted().String()
	rec.TotalRevenue = a.ledger.TotalRevenue().String()
	rec.ExecutedAt = time.Now().UTC().Format(time.RFC3339Nano)

	if a.deps.Journal != nil {
		if err := a.deps.Journal.Append(ctx, rec); err != nil {
			a.logger.Warn("journal append failed", zap.Error(err), zap.String("kind", rec.Kind))
		}
	}
	if a.deps.Store != nil {
		if err := a.deps.Store.Save(ctx, a.ledger.State()); err != nil {
			a.logger.Warn("ledger store save failed", zap.Error(err))
		}
	}
}
