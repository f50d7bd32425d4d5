package adapter_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/model"
	"github.com/USDU-Core/usdu-core/internal/sim"
)

var (
	self = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	user = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func stable(n int64) *big.Int {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(adapter.StableDecimals), nil)
	return new(big.Int).Mul(big.NewInt(n), unit)
}

func counter(n int64) *big.Int {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil)
	return new(big.Int).Mul(big.NewInt(n), unit)
}

type recordingJournal struct {
	mu   sync.Mutex
	recs []model.OperationRecord
}

func (j *recordingJournal) Append(_ context.Context, rec model.OperationRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	return nil
}

// newFixture seeds a counter-asset-heavy pool of 1.0M stablecoin against
// 1.1M counter asset and funds the user with counter asset to deposit.
func newFixture(t *testing.T) (*adapter.Adapter, *sim.Env, *recordingJournal) {
	t.Helper()
	ref, err := adapter.NewPoolReference(0, 1, 6)
	if err != nil {
		t.Fatalf("new reference: %v", err)
	}
	env := sim.NewEnv(ref, self)
	env.SeedPool(stable(1_000_000), counter(1_100_000), stable(2_100_000))
	env.FundCounter(user, counter(1_000_000))

	journal := &recordingJournal{}
	ad := adapter.New(ref, self, adapter.Deps{
		Pool:    env.Pool(),
		Stable:  env.Stable(),
		Counter: env.Counter(),
		Sink:    env.Sink(),
		Access:  env.Access(),
		Env:     env,
		Journal: journal,
	}, nil, nil)
	return ad, env, journal
}

func TestAddLiquidity(t *testing.T) {
	ad, env, journal := newFixture(t)
	ctx := context.Background()

	res, err := ad.AddLiquidity(ctx, user, counter(100_000), big.NewInt(0))
	if err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	if res.StableMinted.Cmp(stable(100_000)) != 0 {
		t.Fatalf("minted = %s, want %s", res.StableMinted, stable(100_000))
	}
	if res.SharesTotal.Cmp(stable(200_000)) != 0 {
		t.Fatalf("shares total = %s, want %s", res.SharesTotal, stable(200_000))
	}
	if res.SharesToCaller.Cmp(stable(100_000)) != 0 {
		t.Fatalf("shares to caller = %s, want %s", res.SharesToCaller, stable(100_000))
	}

	if got := ad.Ledger().TotalMinted(); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("ledger minted = %s, want %s", got, stable(100_000))
	}
	if got := env.ShareBalance(user); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("user shares = %s, want %s", got, stable(100_000))
	}
	if got := env.ShareBalance(self); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("reserve shares = %s, want %s", got, stable(100_000))
	}
	if got := env.CounterBalance(user); got.Cmp(counter(900_000)) != 0 {
		t.Fatalf("user counter = %s, want %s", got, counter(900_000))
	}
	if got := env.StableBalance(self); got.Sign() != 0 {
		t.Fatalf("adapter holds %s free stablecoin after deposit, want 0", got)
	}

	heavy, err := ad.Gate().Check(ctx)
	if err != nil {
		t.Fatalf("gate check: %v", err)
	}
	if !heavy {
		t.Fatalf("pool not counter-asset-heavy after add")
	}

	if len(journal.recs) != 1 || journal.recs[0].Kind != model.OpAddLiquidity {
		t.Fatalf("journal records = %+v", journal.recs)
	}
	if journal.recs[0].TotalMinted != stable(100_000).String() {
		t.Fatalf("journal minted = %s", journal.recs[0].TotalMinted)
	}
}

func TestAddLiquidityZeroAmount(t *testing.T) {
	ad, _, _ := newFixture(t)
	if _, err := ad.AddLiquidity(context.Background(), user, big.NewInt(0), nil); !errors.Is(err, adapter.ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
	if _, err := ad.AddLiquidity(context.Background(), user, nil, nil); !errors.Is(err, adapter.ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
}

func TestAddLiquidityRejectsStableHeavyPool(t *testing.T) {
	ad, env, journal := newFixture(t)
	ctx := context.Background()

	// A stablecoin-heavy pool must reject provisioning outright.
	env.Swap(ad.Ref().StableIndex, stable(300_000))

	_, err := ad.AddLiquidity(ctx, user, counter(100_000), nil)
	var imbalanced *adapter.ImbalancedError
	if !errors.As(err, &imbalanced) {
		t.Fatalf("got %v, want ImbalancedError", err)
	}
	if !imbalanced.WantCounterHeavy {
		t.Fatalf("error direction inverted: %+v", imbalanced)
	}

	// The whole operation rolled back: no debt, deposit refunded.
	if got := ad.Ledger().TotalMinted(); got.Sign() != 0 {
		t.Fatalf("ledger minted = %s after failed add, want 0", got)
	}
	if got := env.CounterBalance(user); got.Cmp(counter(1_000_000)) != 0 {
		t.Fatalf("user counter = %s after rollback, want %s", got, counter(1_000_000))
	}
	if got := env.ShareBalance(user); got.Sign() != 0 {
		t.Fatalf("user shares = %s after rollback, want 0", got)
	}
	if len(journal.recs) != 0 {
		t.Fatalf("failed operation journaled: %+v", journal.recs)
	}
}

func TestRemoveLiquidityProfitable(t *testing.T) {
	ad, env, journal := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	// A trader pushes the pool stablecoin-heavy and fee accrual lifts the
	// share price to 1.05.
	env.Swap(ad.Ref().StableIndex, stable(700_000))
	env.SetVirtualPrice(new(big.Int).Quo(stable(105), big.NewInt(100)))

	res, err := ad.RemoveLiquidity(ctx, user, stable(100_000), big.NewInt(0))
	if err != nil {
		t.Fatalf("remove liquidity: %v", err)
	}
	if res.Proceeds.Cmp(stable(210_000)) != 0 {
		t.Fatalf("proceeds = %s, want %s", res.Proceeds, stable(210_000))
	}
	if res.Paid.Cmp(stable(105_000)) != 0 {
		t.Fatalf("paid = %s, want %s", res.Paid, stable(105_000))
	}
	if res.Profit.Cmp(stable(5_000)) != 0 {
		t.Fatalf("profit = %s, want %s", res.Profit, stable(5_000))
	}
	if res.Burned.Cmp(stable(100_000)) != 0 {
		t.Fatalf("burned = %s, want %s", res.Burned, stable(100_000))
	}

	if got := ad.Ledger().TotalMinted(); got.Sign() != 0 {
		t.Fatalf("ledger minted = %s after full payoff, want 0", got)
	}
	if got := ad.Ledger().TotalRevenue(); got.Cmp(stable(5_000)) != 0 {
		t.Fatalf("ledger revenue = %s, want %s", got, stable(5_000))
	}
	if got := env.StableBalance(user); got.Cmp(stable(105_000)) != 0 {
		t.Fatalf("user stablecoin = %s, want %s", got, stable(105_000))
	}
	if env.SinkCalls() != 1 {
		t.Fatalf("sink calls = %d, want 1", env.SinkCalls())
	}
	// Debt fully paid leaves the retained surplus with the sink's source
	// account.
	if got := env.StableBalance(self); got.Cmp(stable(5_000)) != 0 {
		t.Fatalf("adapter stablecoin = %s, want %s", got, stable(5_000))
	}

	if len(journal.recs) != 2 || journal.recs[1].Kind != model.OpRemoveLiquidity {
		t.Fatalf("journal records = %+v", journal.recs)
	}
}

func TestRemoveLiquidityNotProfitable(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	env.Swap(ad.Ref().StableIndex, stable(700_000))
	// Share price unchanged: the retained half exactly covers the payback.

	_, err := ad.RemoveLiquidity(ctx, user, stable(100_000), nil)
	if !errors.Is(err, adapter.ErrNotProfitable) {
		t.Fatalf("got %v, want ErrNotProfitable", err)
	}

	// Everything rolled back: shares returned, ledger untouched.
	if got := env.ShareBalance(user); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("user shares = %s after rollback, want %s", got, stable(100_000))
	}
	if got := ad.Ledger().TotalMinted(); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("ledger minted = %s after rollback, want %s", got, stable(100_000))
	}
	if got := ad.Ledger().TotalRevenue(); got.Sign() != 0 {
		t.Fatalf("ledger revenue = %s after rollback, want 0", got)
	}
	if got := env.StableBalance(user); got.Sign() != 0 {
		t.Fatalf("user paid %s on failed removal, want 0", got)
	}
}

func TestRemoveLiquidityRejectsCounterHeavyPool(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	// No swap: the pool stays counter-asset-heavy, so removal must refuse.

	_, err := ad.RemoveLiquidity(ctx, user, stable(100_000), nil)
	var imbalanced *adapter.ImbalancedError
	if !errors.As(err, &imbalanced) {
		t.Fatalf("got %v, want ImbalancedError", err)
	}
	if imbalanced.WantCounterHeavy {
		t.Fatalf("error direction inverted: %+v", imbalanced)
	}
	if got := env.ShareBalance(user); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("user shares = %s after rollback, want %s", got, stable(100_000))
	}
}

func TestReconcilePartialSurplus(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	// Share price appreciation values the reserve at 110k against 100k debt.
	env.SetVirtualPrice(new(big.Int).Quo(stable(11), big.NewInt(10)))
	env.FundStable(self, stable(20_000))

	burned, err := ad.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if burned.Cmp(stable(10_000)) != 0 {
		t.Fatalf("burned = %s, want %s", burned, stable(10_000))
	}
	if got := ad.Ledger().TotalMinted(); got.Cmp(stable(90_000)) != 0 {
		t.Fatalf("ledger minted = %s, want %s", got, stable(90_000))
	}
	if env.SinkCalls() != 0 {
		t.Fatalf("sink called on partial payoff")
	}
}

func TestReconcileFullPayoff(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	env.SetVirtualPrice(stable(3))
	env.FundStable(self, stable(120_000))

	burned, err := ad.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if burned.Cmp(stable(100_000)) != 0 {
		t.Fatalf("burned = %s, want %s", burned, stable(100_000))
	}
	if got := ad.Ledger().TotalMinted(); got.Sign() != 0 {
		t.Fatalf("ledger minted = %s, want 0", got)
	}
	if env.SinkCalls() != 1 {
		t.Fatalf("sink calls = %d, want 1", env.SinkCalls())
	}
}

func TestReconcileNothingToDo(t *testing.T) {
	ad, _, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	// Share value exactly matches outstanding debt: no surplus.
	_, err := ad.Reconcile(ctx)
	var nothing *adapter.NothingToReconcileError
	if !errors.As(err, &nothing) {
		t.Fatalf("got %v, want NothingToReconcileError", err)
	}
	if nothing.Assets.Cmp(stable(100_000)) != 0 || nothing.Minted.Cmp(stable(100_000)) != 0 {
		t.Fatalf("observed assets=%s minted=%s", nothing.Assets, nothing.Minted)
	}
}

func TestReduceMint(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	env.FundStable(user, stable(30_000))

	burned, err := ad.ReduceMint(ctx, user, stable(30_000))
	if err != nil {
		t.Fatalf("reduce mint: %v", err)
	}
	if burned.Cmp(stable(30_000)) != 0 {
		t.Fatalf("burned = %s, want %s", burned, stable(30_000))
	}
	if got := ad.Ledger().TotalMinted(); got.Cmp(stable(70_000)) != 0 {
		t.Fatalf("ledger minted = %s, want %s", got, stable(70_000))
	}
	if got := env.StableBalance(user); got.Sign() != 0 {
		t.Fatalf("user stablecoin = %s, want 0", got)
	}

	if _, err := ad.ReduceMint(ctx, user, big.NewInt(0)); !errors.Is(err, adapter.ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
}

func TestReduceMintFullPayoffDistributes(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	env.FundStable(user, stable(120_000))

	burned, err := ad.ReduceMint(ctx, user, stable(120_000))
	if err != nil {
		t.Fatalf("reduce mint: %v", err)
	}
	if burned.Cmp(stable(100_000)) != 0 {
		t.Fatalf("burned = %s, want %s", burned, stable(100_000))
	}
	if got := ad.Ledger().TotalMinted(); got.Sign() != 0 {
		t.Fatalf("ledger minted = %s, want 0", got)
	}
	if env.SinkCalls() != 1 {
		t.Fatalf("sink calls = %d, want 1", env.SinkCalls())
	}
}

func TestEmergencyRedeem(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()
	guardian := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	if _, err := ad.EmergencyRedeem(ctx, guardian, stable(50_000), nil); !errors.Is(err, adapter.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}

	env.SetGuardian(guardian, true)
	proceeds, err := ad.EmergencyRedeem(ctx, guardian, stable(50_000), nil)
	if err != nil {
		t.Fatalf("emergency redeem: %v", err)
	}
	if proceeds.Cmp(stable(50_000)) != 0 {
		t.Fatalf("proceeds = %s, want %s", proceeds, stable(50_000))
	}
	// Half the reserve left, so half the debt was attributed and burned.
	if got := ad.Ledger().TotalMinted(); got.Cmp(stable(50_000)) != 0 {
		t.Fatalf("ledger minted = %s, want %s", got, stable(50_000))
	}
	if got := env.ShareBalance(self); got.Cmp(stable(50_000)) != 0 {
		t.Fatalf("reserve shares = %s, want %s", got, stable(50_000))
	}
	if got := env.StableBalance(self); got.Sign() != 0 {
		t.Fatalf("adapter stablecoin = %s, want 0", got)
	}

	if _, err := ad.EmergencyRedeem(ctx, guardian, big.NewInt(0), nil); !errors.Is(err, adapter.ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
}

func TestGateCheckIdempotent(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	first, err := ad.Gate().Check(ctx)
	if err != nil {
		t.Fatalf("gate check: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := ad.Gate().Check(ctx)
		if err != nil {
			t.Fatalf("gate check: %v", err)
		}
		if got != first {
			t.Fatalf("direction changed without a mutation: %v then %v", first, got)
		}
	}

	// A swap is a mutation and may flip it.
	env.Swap(ad.Ref().StableIndex, stable(700_000))
	flipped, err := ad.Gate().Check(ctx)
	if err != nil {
		t.Fatalf("gate check: %v", err)
	}
	if flipped {
		t.Fatalf("pool still counter-asset-heavy after large stablecoin swap in")
	}
}

func TestRemoveLiquidityMinStableRollsBack(t *testing.T) {
	ad, env, _ := newFixture(t)
	ctx := context.Background()

	if _, err := ad.AddLiquidity(ctx, user, counter(100_000), nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	env.Swap(ad.Ref().StableIndex, stable(700_000))

	// Minimum above the achievable proceeds forces a pool-level failure; the
	// pulled shares must come back.
	_, err := ad.RemoveLiquidity(ctx, user, stable(100_000), stable(500_000))
	if err == nil {
		t.Fatalf("expected minimum-output failure")
	}
	if got := env.ShareBalance(user); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("user shares = %s after rollback, want %s", got, stable(100_000))
	}
	if got := env.ShareBalance(self); got.Cmp(stable(100_000)) != 0 {
		t.Fatalf("reserve shares = %s after rollback, want %s", got, stable(100_000))
	}
}
