package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/USDU-Core/usdu-core/internal/model"
)

// Store provides Postgres persistence for the ledger, the operation journal,
// and watcher samples.
type Store struct {
	pool *pgxpool.Pool
	name string
}

// NewStore opens a pool against dsn. name keys the ledger row so multiple
// adapters can share one database.
func NewStore(ctx context.Context, dsn string, name string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, name: name}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load returns the persisted ledger state, if any.
func (s *Store) Load(ctx context.Context) (model.LedgerState, bool, error) {
	var state model.LedgerState
	row := s.pool.QueryRow(ctx, `
		SELECT total_minted, total_revenue, updated_at::text
		FROM adapter_ledger WHERE name=$1
	`, s.name)
	if err := row.Scan(&state.TotalMinted, &state.TotalRevenue, &state.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LedgerState{}, false, nil
		}
		return model.LedgerState{}, false, err
	}
	return state, true, nil
}

// Save upserts the ledger state.
func (s *Store) Save(ctx context.Context, state model.LedgerState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO adapter_ledger (name, total_minted, total_revenue, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET total_minted = EXCLUDED.total_minted,
			total_revenue = EXCLUDED.total_revenue,
			updated_at = now()
	`, s.name, state.TotalMinted, state.TotalRevenue)
	return err
}

// Append inserts one operation record into the journal table.
func (s *Store) Append(ctx context.Context, rec model.OperationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO adapter_operations (
			name, kind, caller, counter_in, stable_minted, shares_in, shares_out,
			proceeds, profit, burned, total_minted, total_revenue, executed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now())
	`,
		s.name,
		rec.Kind,
		rec.Caller,
		rec.CounterIn,
		rec.StableMinted,
		rec.SharesIn,
		rec.SharesOut,
		rec.Proceeds,
		rec.Profit,
		rec.Burned,
		rec.TotalMinted,
		rec.TotalRevenue,
		rec.ExecutedAt,
	)
	return err
}

// InsertSamples batch-inserts watcher observations.
func (s *Store) InsertSamples(ctx context.Context, samples []model.ImbalanceSample) error {
	if len(samples) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, sample := range samples {
		batch.Queue(`
			INSERT INTO pool_samples (
				chain_id, pool_address, block_number, block_time, stable_balance,
				counter_balance, virtual_price, shares_held, counter_heavy, observed_at,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
			ON CONFLICT (chain_id, pool_address, block_number) DO NOTHING
		`,
			int64(sample.ChainID),
			sample.PoolAddress,
			int64(sample.BlockNumber),
			int64(sample.BlockTime),
			sample.StableBalance,
			sample.CounterBalance,
			sample.VirtualPrice,
			sample.SharesHeld,
			sample.CounterHeavy,
			sample.ObservedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range samples {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
