package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/USDU-Core/usdu-core/internal/adapter"
	"github.com/USDU-Core/usdu-core/internal/chain"
	"github.com/USDU-Core/usdu-core/internal/model"
)

// RunConfig holds runtime settings for the watcher.
type RunConfig struct {
	ChainID       uint64
	PoolAddress   common.Address
	Self          common.Address
	Interval      time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	AutoReconcile bool
}

// SampleSink persists watcher observations.
type SampleSink interface {
	InsertSamples(ctx context.Context, samples []model.ImbalanceSample) error
}

// Status is the watcher's latest view, served over HTTP.
type Status struct {
	Ledger model.LedgerState     `json:"ledger"`
	Sample model.ImbalanceSample `json:"sample"`
}

// Runner polls the pool, exports metrics, persists samples, and in execute
// mode opportunistically reconciles surplus against debt.
type Runner struct {
	cfg     RunConfig
	chain   *chain.Client
	ad      *adapter.Adapter
	pool    adapter.Pool
	sink    SampleSink
	metrics *Metrics
	logger  *zap.Logger

	mu     sync.RWMutex
	status Status
}

// NewRunner builds a Runner with its dependencies. sink and metrics may be
// nil.
func NewRunner(cfg RunConfig, chainClient *chain.Client, ad *adapter.Adapter, pool adapter.Pool, sink SampleSink, metrics *Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		chain:   chainClient,
		ad:      ad,
		pool:    pool,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}
}

// Status returns the most recent observation.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Run executes the polling loop until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if r.ad == nil {
		return fmt.Errorf("adapter is nil")
	}
	if r.pool == nil {
		return fmt.Errorf("pool is nil")
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := r.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			if r.metrics != nil {
				r.metrics.SampleFailures.Inc()
			}
			r.logger.Warn("sample failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) tick(ctx context.Context) error {
	var sample model.ImbalanceSample
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		sample, err = r.observe(ctx)
		return err
	})
	if err != nil {
		return err
	}

	ledger := r.ad.Ledger().State()

	r.mu.Lock()
	r.status = Status{Ledger: ledger, Sample: sample}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Samples.Inc()
		if sample.CounterHeavy {
			r.metrics.CounterHeavy.Set(1)
		} else {
			r.metrics.CounterHeavy.Set(0)
		}
		r.metrics.TotalMinted.Set(approx(r.ad.Ledger().TotalMinted()))
		r.metrics.TotalRevenue.Set(approx(r.ad.Ledger().TotalRevenue()))
	}

	r.logger.Info("pool observed",
		zap.Uint64("block", sample.BlockNumber),
		zap.Bool("counter_heavy", sample.CounterHeavy),
		zap.String("stable_balance", sample.StableBalance),
		zap.String("counter_balance", sample.CounterBalance),
		zap.String("total_minted", ledger.TotalMinted),
	)

	if r.sink != nil {
		if err := r.sink.InsertSamples(ctx, []model.ImbalanceSample{sample}); err != nil {
			r.logger.Warn("persist sample failed", zap.Error(err))
		}
	}

	if r.cfg.AutoReconcile {
		r.tryReconcile(ctx)
	}
	return nil
}

func (r *Runner) observe(ctx context.Context) (model.ImbalanceSample, error) {
	var blockNumber, blockTime uint64
	if r.chain != nil {
		var err error
		blockNumber, err = r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return model.ImbalanceSample{}, fmt.Errorf("latest block: %w", err)
		}
		blockTime, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			return model.ImbalanceSample{}, fmt.Errorf("block timestamp: %w", err)
		}
	}

	counterHeavy, err := r.ad.Gate().Check(ctx)
	if err != nil {
		return model.ImbalanceSample{}, err
	}
	stable, err := r.pool.Balances(ctx, r.ad.Ref().StableIndex)
	if err != nil {
		return model.ImbalanceSample{}, fmt.Errorf("stable balance: %w", err)
	}
	counter, err := r.pool.Balances(ctx, r.ad.Ref().CounterIndex)
	if err != nil {
		return model.ImbalanceSample{}, fmt.Errorf("counter balance: %w", err)
	}
	price, err := r.pool.VirtualPrice(ctx)
	if err != nil {
		return model.ImbalanceSample{}, fmt.Errorf("virtual price: %w", err)
	}
	shares, err := r.pool.SharesOf(ctx, r.cfg.Self)
	if err != nil {
		return model.ImbalanceSample{}, fmt.Errorf("share balance: %w", err)
	}

	if r.metrics != nil {
		r.metrics.SharesHeld.Set(approx(shares))
	}

	return model.ImbalanceSample{
		ChainID:        r.cfg.ChainID,
		PoolAddress:    r.cfg.PoolAddress.Hex(),
		BlockNumber:    blockNumber,
		BlockTime:      blockTime,
		StableBalance:  stable.String(),
		CounterBalance: counter.String(),
		VirtualPrice:   price.String(),
		SharesHeld:     shares.String(),
		CounterHeavy:   counterHeavy,
		ObservedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (r *Runner) tryReconcile(ctx context.Context) {
	burned, err := r.ad.Reconcile(ctx)
	if err != nil {
		var nothing *adapter.NothingToReconcileError
		if errors.As(err, &nothing) {
			if r.metrics != nil {
				r.metrics.Operations.WithLabelValues(model.OpReconcile, "noop").Inc()
			}
			return
		}
		if r.metrics != nil {
			r.metrics.Operations.WithLabelValues(model.OpReconcile, "error").Inc()
		}
		r.logger.Warn("auto reconcile failed", zap.Error(err))
		return
	}

	if r.metrics != nil {
		r.metrics.Operations.WithLabelValues(model.OpReconcile, "ok").Inc()
	}
	r.logger.Info("auto reconcile", zap.String("burned", burned.String()))
}
