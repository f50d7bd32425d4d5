package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/distributor"
	"github.com/USDU-Core/usdu-core/internal/sim"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a full add/swap/remove/reconcile cycle in memory",
		RunE:  runSimulate,
	}

	cmd.Flags().Uint("counter-decimals", 6, "counter-asset decimals")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// runSimulate drives the adapter through a representative lifecycle against
// the in-memory environment: provision into a counter-heavy pool, let a swap
// flip the direction, redeem at a profit, and watch the debt clear.
func runSimulate(cmd *cobra.Command, _ []string) error {
	decimals, _ := cmd.Flags().GetUint("counter-decimals")
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ref, err := adapter.NewPoolReference(0, 1, uint8(decimals))
	if err != nil {
		return err
	}

	var (
		self      = common.HexToAddress("0xadab7e8Ce0dD402497cF40AeB24323A6aD392c29")
		user      = common.HexToAddress("0x5eF4c36321233b11f14CdA5a35e91Ab40De8D4a5")
		treasury  = common.HexToAddress("0x7eA57Ca9A76E42F5bB45f6bFef7fbD2A9e0f0E7b")
		insurance = common.HexToAddress("0x9C12cF0BE1f0f4c8E3F7c4E81BdA8f0dD7a0d0E1")
	)

	env := sim.NewEnv(ref, self)

	sink, err := distributor.NewWeighted(env.Stable(), self, []distributor.Recipient{
		{Addr: treasury, Weight: 7000},
		{Addr: insurance, Weight: 3000},
	}, logger)
	if err != nil {
		return err
	}

	ad := adapter.New(ref, self, adapter.Deps{
		Pool:    env.Pool(),
		Stable:  env.Stable(),
		Counter: env.Counter(),
		Sink:    sink,
		Access:  env.Access(),
		Env:     env,
	}, nil, logger)

	ctx := context.Background()
	counterUnit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	stableUnit := new(big.Int).Exp(big.NewInt(10), big.NewInt(adapter.StableDecimals), nil)

	// Counter-heavy pool: 1.0M stablecoin against 1.1M counter asset.
	env.SeedPool(
		scale(1_000_000, stableUnit),
		scale(1_100_000, counterUnit),
		scale(2_100_000, stableUnit),
	)
	env.FundCounter(user, scale(1_000_000, counterUnit))

	added, err := ad.AddLiquidity(ctx, user, scale(100_000, counterUnit), big.NewInt(0))
	if err != nil {
		return fmt.Errorf("add liquidity: %w", err)
	}
	logger.Info("step: liquidity added",
		zap.String("stable_minted", added.StableMinted.String()),
		zap.String("shares_to_caller", added.SharesToCaller.String()),
	)

	// A trader swaps 700k stablecoin in, leaving the pool stablecoin-heavy,
	// while accrued fees lift the share price.
	env.Swap(ref.StableIndex, scale(700_000, stableUnit))
	env.SetVirtualPrice(new(big.Int).Quo(new(big.Int).Mul(stableUnit, big.NewInt(105)), big.NewInt(100)))

	removed, err := ad.RemoveLiquidity(ctx, user, added.SharesToCaller, big.NewInt(0))
	if err != nil {
		return fmt.Errorf("remove liquidity: %w", err)
	}
	logger.Info("step: liquidity removed",
		zap.String("proceeds", removed.Proceeds.String()),
		zap.String("profit", removed.Profit.String()),
		zap.String("burned", removed.Burned.String()),
	)

	out := struct {
		Ledger           interface{} `json:"ledger"`
		TreasuryBalance  string      `json:"treasury_balance"`
		InsuranceBalance string      `json:"insurance_balance"`
		UserStable       string      `json:"user_stable"`
	}{
		Ledger:           ad.Ledger().State(),
		TreasuryBalance:  env.StableBalance(treasury).String(),
		InsuranceBalance: env.StableBalance(insurance).String(),
		UserStable:       env.StableBalance(user).String(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func scale(n int64, unit *big.Int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), unit)
}
