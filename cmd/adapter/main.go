package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/bindings"
	"github.com/USDU-Core/usdu-core/internal/chain"
	"github.com/USDU-Core/usdu-core/internal/config"
	"github.com/USDU-Core/usdu-core/internal/storage"
	"github.com/USDU-Core/usdu-core/internal/storage/postgres"
	"github.com/USDU-Core/usdu-core/internal/watch"
)

func main() {
	root := &cobra.Command{
		Use:          "adapter",
		Short:        "USDU pool liquidity adapter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the pool, serve status, and optionally auto-reconcile",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "RPC URL")
	watchCmd.Flags().String("pool", "", "pool contract address")
	watchCmd.Flags().String("stable", "", "stablecoin contract address")
	watchCmd.Flags().String("counter", "", "counter-asset contract address")
	watchCmd.Flags().String("access", "", "access-control contract address")
	watchCmd.Flags().String("distributor", "", "revenue distributor contract address")
	watchCmd.Flags().String("adapter", "", "adapter account address (derived from key when empty)")
	watchCmd.Flags().String("private-key", "", "hex private key for execute mode")
	watchCmd.Flags().Int("stable-index", 0, "stablecoin index inside the pool (0 or 1)")
	watchCmd.Flags().Uint("counter-decimals", 6, "counter-asset decimals")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	watchCmd.Flags().String("store-name", "usdu-adapter", "ledger row name in Postgres")
	watchCmd.Flags().String("journal", "./data/operations.jsonl", "operation journal JSONL path")
	watchCmd.Flags().String("ledger-state", "./data/ledger.json", "ledger state file path")
	watchCmd.Flags().Duration("interval", 30*time.Second, "poll interval")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("listen", ":8087", "status/metrics listen address")
	watchCmd.Flags().Bool("execute", false, "attempt reconciliation when surplus exists")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)
	root.AddCommand(newStatusCmd())
	root.AddCommand(newSimulateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	ref, err := adapter.NewPoolReference(cfg.StableIndex, 1-cfg.StableIndex, cfg.CounterDecimals)
	if err != nil {
		return err
	}

	var opts *bind.TransactOpts
	self := common.HexToAddress(cfg.AdapterAddress)
	if cfg.Execute {
		if cfg.PrivateKey == "" {
			return fmt.Errorf("execute mode requires a private key")
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return fmt.Errorf("parse private key: %w", err)
		}
		opts, err = bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return fmt.Errorf("build transactor: %w", err)
		}
		if self == (common.Address{}) {
			self = crypto.PubkeyToAddress(key.PublicKey)
		}
	}
	if self == (common.Address{}) {
		return fmt.Errorf("adapter address is required")
	}

	deps, err := buildChainDeps(cfg, chainClient, opts, self)
	if err != nil {
		return err
	}

	if cfg.Execute && deps.Access != nil {
		isModule, err := deps.Access.IsModule(ctx, self)
		if err != nil {
			return fmt.Errorf("module check: %w", err)
		}
		if !isModule {
			logger.Warn("adapter account is not an authorized issuer module; mints will revert",
				zap.String("adapter", self.Hex()))
		}
	}

	ledger, err := loadLedger(ctx, deps.Store, logger)
	if err != nil {
		return err
	}

	ad := adapter.New(ref, self, deps, ledger, logger)

	var sampleSink watch.SampleSink
	if pg, ok := deps.Store.(*postgres.Store); ok {
		sampleSink = pg
		defer pg.Close()
	}

	registry := prometheus.NewRegistry()
	metrics := watch.NewMetrics(registry)

	runner := watch.NewRunner(watch.RunConfig{
		ChainID:       chainID.Uint64(),
		PoolAddress:   common.HexToAddress(cfg.PoolAddress),
		Self:          self,
		Interval:      cfg.Interval,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		AutoReconcile: cfg.Execute,
	}, chainClient, ad, deps.Pool, sampleSink, metrics, logger)

	server := watch.NewServer(cfg.ListenAddr, runner, registry, logger)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("watcher start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", cfg.PoolAddress),
		zap.String("adapter", self.Hex()),
		zap.Duration("interval", cfg.Interval),
		zap.Bool("execute", cfg.Execute),
		zap.String("listen", cfg.ListenAddr),
	)

	return runner.Run(ctx)
}

// buildChainDeps wires the on-chain collaborator bindings and persistent
// stores from config.
func buildChainDeps(cfg config.Config, chainClient *chain.Client, opts *bind.TransactOpts, self common.Address) (adapter.Deps, error) {
	if cfg.PoolAddress == "" || cfg.StableAddress == "" || cfg.CounterAddress == "" {
		return adapter.Deps{}, fmt.Errorf("pool, stable, and counter addresses are required")
	}

	backend := chainClient.Eth()

	stable, err := bindings.NewStable(common.HexToAddress(cfg.StableAddress), backend, opts, self)
	if err != nil {
		return adapter.Deps{}, err
	}
	counter, err := bindings.NewERC20(common.HexToAddress(cfg.CounterAddress), backend, opts, self)
	if err != nil {
		return adapter.Deps{}, err
	}

	var coins [2]bindings.BalanceReader
	coins[cfg.StableIndex] = stable
	coins[1-cfg.StableIndex] = counter
	pool, err := bindings.NewPool(common.HexToAddress(cfg.PoolAddress), backend, opts, self, coins)
	if err != nil {
		return adapter.Deps{}, err
	}

	deps := adapter.Deps{Pool: pool, Stable: stable, Counter: counter}

	if cfg.AccessAddress != "" {
		access, err := bindings.NewAccess(common.HexToAddress(cfg.AccessAddress), backend)
		if err != nil {
			return adapter.Deps{}, err
		}
		deps.Access = access
	}
	if cfg.DistributorAddress != "" {
		sink, err := bindings.NewSink(common.HexToAddress(cfg.DistributorAddress), backend, opts)
		if err != nil {
			return adapter.Deps{}, err
		}
		deps.Sink = sink
	}
	if cfg.Execute && deps.Sink == nil {
		return adapter.Deps{}, fmt.Errorf("execute mode requires a distributor address")
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(context.Background(), cfg.PGDSN, cfg.StoreName)
		if err != nil {
			return adapter.Deps{}, fmt.Errorf("open postgres: %w", err)
		}
		deps.Store = store
		deps.Journal = store
	} else {
		deps.Store = &storage.FileLedgerStore{Path: cfg.LedgerStatePath}
		deps.Journal = storage.NewJsonlJournal(cfg.JournalPath)
	}

	return deps, nil
}

func loadLedger(ctx context.Context, store adapter.LedgerStore, logger *zap.Logger) (*adapter.Ledger, error) {
	if store == nil {
		return adapter.NewLedger(), nil
	}
	state, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if !ok {
		return adapter.NewLedger(), nil
	}
	ledger, err := adapter.RestoreLedger(state)
	if err != nil {
		return nil, err
	}
	logger.Info("ledger restored",
		zap.String("total_minted", state.TotalMinted),
		zap.String("total_revenue", state.TotalRevenue),
	)
	return ledger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
