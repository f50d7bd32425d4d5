package watch

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/model"
	"github.com/USDU-Core/usdu-core/internal/sim"
)

type captureSink struct {
	samples []model.ImbalanceSample
}

func (s *captureSink) InsertSamples(_ context.Context, samples []model.ImbalanceSample) error {
	s.samples = append(s.samples, samples...)
	return nil
}

func newRunnerFixture(t *testing.T, autoReconcile bool) (*Runner, *sim.Env, *captureSink) {
	t.Helper()
	self := common.HexToAddress("0x00000000000000000000000000000000000000ad")
	ref, err := adapter.NewPoolReference(0, 1, 6)
	if err != nil {
		t.Fatalf("new reference: %v", err)
	}
	env := sim.NewEnv(ref, self)

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(adapter.StableDecimals), nil)
	counterUnit := new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil)
	env.SeedPool(
		new(big.Int).Mul(big.NewInt(1_000_000), unit),
		new(big.Int).Mul(big.NewInt(1_100_000), counterUnit),
		new(big.Int).Mul(big.NewInt(2_100_000), unit),
	)

	ad := adapter.New(ref, self, adapter.Deps{
		Pool:    env.Pool(),
		Stable:  env.Stable(),
		Counter: env.Counter(),
		Sink:    env.Sink(),
		Access:  env.Access(),
		Env:     env,
	}, nil, nil)

	sink := &captureSink{}
	runner := NewRunner(RunConfig{
		ChainID:       1,
		PoolAddress:   common.HexToAddress("0x00000000000000000000000000000000000000cc"),
		Self:          self,
		Interval:      time.Second,
		AutoReconcile: autoReconcile,
	}, nil, ad, env.Pool(), sink, nil, nil)
	return runner, env, sink
}

func TestTickObservesPool(t *testing.T) {
	runner, _, sink := newRunnerFixture(t, false)

	if err := runner.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	status := runner.Status()
	if !status.Sample.CounterHeavy {
		t.Fatalf("sample direction wrong: %+v", status.Sample)
	}
	if status.Sample.ChainID != 1 {
		t.Fatalf("chain id = %d, want 1", status.Sample.ChainID)
	}
	if status.Sample.StableBalance == "" || status.Sample.CounterBalance == "" {
		t.Fatalf("balances not captured: %+v", status.Sample)
	}
	if status.Ledger.TotalMinted != "0" {
		t.Fatalf("ledger minted = %s, want 0", status.Ledger.TotalMinted)
	}

	if len(sink.samples) != 1 {
		t.Fatalf("sink samples = %d, want 1", len(sink.samples))
	}
	if sink.samples[0].PoolAddress != runner.cfg.PoolAddress.Hex() {
		t.Fatalf("sample pool = %s", sink.samples[0].PoolAddress)
	}
}

func TestTickAutoReconciles(t *testing.T) {
	runner, env, _ := newRunnerFixture(t, true)
	ctx := context.Background()

	user := common.HexToAddress("0x0000000000000000000000000000000000000001")
	counterUnit := new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil)
	deposit := new(big.Int).Mul(big.NewInt(100_000), counterUnit)
	env.FundCounter(user, deposit)
	if _, err := runner.ad.AddLiquidity(ctx, user, deposit, nil); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	// Appreciation opens a surplus; a funded balance lets the burn settle.
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(adapter.StableDecimals), nil)
	env.SetVirtualPrice(new(big.Int).Quo(new(big.Int).Mul(big.NewInt(11), unit), big.NewInt(10)))
	env.FundStable(runner.cfg.Self, new(big.Int).Mul(big.NewInt(20_000), unit))

	if err := runner.tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	want := new(big.Int).Mul(big.NewInt(90_000), unit)
	if got := runner.ad.Ledger().TotalMinted(); got.Cmp(want) != 0 {
		t.Fatalf("ledger minted = %s after auto reconcile, want %s", got, want)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	runner, _, _ := newRunnerFixture(t, false)
	runner.cfg.Interval = 0
	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected interval validation error")
	}
}
