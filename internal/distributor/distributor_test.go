package distributor_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/distributor"
	"github.com/USDU-Core/usdu-core/internal/sim"
)

var (
	self = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	a1   = common.HexToAddress("0x0000000000000000000000000000000000000011")
	a2   = common.HexToAddress("0x0000000000000000000000000000000000000022")
	a3   = common.HexToAddress("0x0000000000000000000000000000000000000033")
)

func newStable(t *testing.T) (*sim.Env, adapter.Stablecoin) {
	t.Helper()
	ref, err := adapter.NewPoolReference(0, 1, 6)
	if err != nil {
		t.Fatalf("new reference: %v", err)
	}
	env := sim.NewEnv(ref, self)
	return env, env.Stable()
}

func TestNewWeightedValidation(t *testing.T) {
	_, stable := newStable(t)

	cases := []struct {
		name       string
		recipients []distributor.Recipient
		wantErr    bool
	}{
		{"single full weight", []distributor.Recipient{{Addr: a1, Weight: 10000}}, false},
		{"two way split", []distributor.Recipient{{Addr: a1, Weight: 7000}, {Addr: a2, Weight: 3000}}, false},
		{"padded with empty slots", []distributor.Recipient{{Addr: a1, Weight: 10000}, {}, {}}, false},
		{"empty", nil, true},
		{"all slots empty", []distributor.Recipient{{}, {}}, true},
		{"weights under total", []distributor.Recipient{{Addr: a1, Weight: 9999}}, true},
		{"weights over total", []distributor.Recipient{{Addr: a1, Weight: 6000}, {Addr: a2, Weight: 6000}}, true},
		{"zero address with weight", []distributor.Recipient{{Weight: 10000}}, true},
		{"zero weight with address", []distributor.Recipient{{Addr: a1, Weight: 10000}, {Addr: a2}}, true},
		{"too many recipients", []distributor.Recipient{
			{Addr: a1, Weight: 2000}, {Addr: a2, Weight: 2000}, {Addr: a3, Weight: 2000},
			{Addr: common.HexToAddress("0x44"), Weight: 2000},
			{Addr: common.HexToAddress("0x55"), Weight: 1000},
			{Addr: common.HexToAddress("0x66"), Weight: 1000},
		}, true},
	}
	for _, tc := range cases {
		_, err := distributor.NewWeighted(stable, self, tc.recipients, nil)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestDistributeByWeight(t *testing.T) {
	env, stable := newStable(t)
	w, err := distributor.NewWeighted(stable, self, []distributor.Recipient{
		{Addr: a1, Weight: 5000},
		{Addr: a2, Weight: 3000},
		{Addr: a3, Weight: 2000},
	}, nil)
	if err != nil {
		t.Fatalf("new weighted: %v", err)
	}

	env.FundStable(self, big.NewInt(10_000))
	if err := w.Distribute(context.Background()); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	if got := env.StableBalance(a1); got.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("a1 = %s, want 5000", got)
	}
	if got := env.StableBalance(a2); got.Cmp(big.NewInt(3_000)) != 0 {
		t.Fatalf("a2 = %s, want 3000", got)
	}
	if got := env.StableBalance(a3); got.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("a3 = %s, want 2000", got)
	}
	if got := env.StableBalance(self); got.Sign() != 0 {
		t.Fatalf("residual balance %s left behind", got)
	}
}

func TestDistributeRemainderToLast(t *testing.T) {
	env, stable := newStable(t)
	w, err := distributor.NewWeighted(stable, self, []distributor.Recipient{
		{Addr: a1, Weight: 3333},
		{Addr: a2, Weight: 3333},
		{Addr: a3, Weight: 3334},
	}, nil)
	if err != nil {
		t.Fatalf("new weighted: %v", err)
	}

	env.FundStable(self, big.NewInt(100))
	if err := w.Distribute(context.Background()); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	// 33 + 33 go out by weight; the last recipient absorbs the remainder so
	// nothing stays behind.
	if got := env.StableBalance(a1); got.Cmp(big.NewInt(33)) != 0 {
		t.Fatalf("a1 = %s, want 33", got)
	}
	if got := env.StableBalance(a2); got.Cmp(big.NewInt(33)) != 0 {
		t.Fatalf("a2 = %s, want 33", got)
	}
	if got := env.StableBalance(a3); got.Cmp(big.NewInt(34)) != 0 {
		t.Fatalf("a3 = %s, want 34", got)
	}
	if got := env.StableBalance(self); got.Sign() != 0 {
		t.Fatalf("residual balance %s left behind", got)
	}
}

func TestDistributeZeroBalance(t *testing.T) {
	env, stable := newStable(t)
	w, err := distributor.NewWeighted(stable, self, []distributor.Recipient{{Addr: a1, Weight: 10000}}, nil)
	if err != nil {
		t.Fatalf("new weighted: %v", err)
	}
	if err := w.Distribute(context.Background()); err != nil {
		t.Fatalf("distribute on empty balance: %v", err)
	}
	if got := env.StableBalance(a1); got.Sign() != 0 {
		t.Fatalf("a1 = %s, want 0", got)
	}
}
