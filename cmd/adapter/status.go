package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/bindings"
	"github.com/USDU-Core/usdu-core/internal/chain"
	"github.com/USDU-Core/usdu-core/internal/config"
	"github.com/USDU-Core/usdu-core/internal/model"
	"github.com/USDU-Core/usdu-core/internal/storage"
	"github.com/USDU-Core/usdu-core/internal/storage/postgres"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "One-shot read of pool state and persisted ledger",
		RunE:  runStatus,
	}

	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("pool", "", "pool contract address")
	cmd.Flags().String("stable", "", "stablecoin contract address")
	cmd.Flags().String("counter", "", "counter-asset contract address")
	cmd.Flags().String("adapter", "", "adapter account address")
	cmd.Flags().Int("stable-index", 0, "stablecoin index inside the pool (0 or 1)")
	cmd.Flags().Uint("counter-decimals", 6, "counter-asset decimals")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	cmd.Flags().String("store-name", "usdu-adapter", "ledger row name in Postgres")
	cmd.Flags().String("ledger-state", "./data/ledger.json", "ledger state file path")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.PoolAddress == "" || cfg.StableAddress == "" || cfg.CounterAddress == "" {
		return fmt.Errorf("pool, stable, and counter addresses are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	ref, err := adapter.NewPoolReference(cfg.StableIndex, 1-cfg.StableIndex, cfg.CounterDecimals)
	if err != nil {
		return err
	}

	self := common.HexToAddress(cfg.AdapterAddress)
	backend := chainClient.Eth()

	stable, err := bindings.NewStable(common.HexToAddress(cfg.StableAddress), backend, nil, self)
	if err != nil {
		return err
	}
	counter, err := bindings.NewERC20(common.HexToAddress(cfg.CounterAddress), backend, nil, self)
	if err != nil {
		return err
	}
	var coins [2]bindings.BalanceReader
	coins[ref.StableIndex] = stable
	coins[ref.CounterIndex] = counter
	pool, err := bindings.NewPool(common.HexToAddress(cfg.PoolAddress), backend, nil, self, coins)
	if err != nil {
		return err
	}

	gate := adapter.NewGate(pool, ref)
	counterHeavy, err := gate.Check(ctx)
	if err != nil {
		return err
	}
	stableBalance, err := pool.Balances(ctx, ref.StableIndex)
	if err != nil {
		return err
	}
	counterBalance, err := pool.Balances(ctx, ref.CounterIndex)
	if err != nil {
		return err
	}
	price, err := pool.VirtualPrice(ctx)
	if err != nil {
		return err
	}
	shares, err := pool.SharesOf(ctx, self)
	if err != nil {
		return err
	}

	var store adapter.LedgerStore
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.StoreName)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer pg.Close()
		store = pg
	} else {
		store = &storage.FileLedgerStore{Path: cfg.LedgerStatePath}
	}

	ledger, ok, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if !ok {
		ledger = model.LedgerState{TotalMinted: "0", TotalRevenue: "0"}
	}

	out := struct {
		Pool           string            `json:"pool"`
		StableBalance  string            `json:"stable_balance"`
		CounterBalance string            `json:"counter_balance"`
		VirtualPrice   string            `json:"virtual_price"`
		SharesHeld     string            `json:"shares_held"`
		CounterHeavy   bool              `json:"counter_heavy"`
		Ledger         model.LedgerState `json:"ledger"`
	}{
		Pool:           cfg.PoolAddress,
		StableBalance:  stableBalance.String(),
		CounterBalance: counterBalance.String(),
		VirtualPrice:   price.String(),
		SharesHeld:     shares.String(),
		CounterHeavy:   counterHeavy,
		Ledger:         ledger,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
