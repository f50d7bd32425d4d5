// Package distributor implements the weighted revenue sink: on a distribute
// signal it splits the adapter's free stablecoin balance among configured
// recipients.
package distributor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/USDU-Core/usdu-core/internal/adapter"
)

// MaxRecipients bounds the recipient list.
const MaxRecipients = 5

// TotalWeight is the fixed sum recipient weights must reach.
const TotalWeight = 10000

// Recipient is one weighted revenue target. Zero-address recipients with
// zero weight are skipped.
type Recipient struct {
	Addr   common.Address
	Weight uint64
}

// Weighted splits the adapter's stablecoin balance by recipient weight.
type Weighted struct {
	stable     adapter.Stablecoin
	self       common.Address
	recipients []Recipient
	logger     *zap.Logger
}

// NewWeighted validates the recipient set and returns the distributor.
func NewWeighted(stable adapter.Stablecoin, self common.Address, recipients []Recipient, logger *zap.Logger) (*Weighted, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if len(recipients) > MaxRecipients {
		return nil, fmt.Errorf("too many recipients: %d > %d", len(recipients), MaxRecipients)
	}

	active := make([]Recipient, 0, len(recipients))
	var sum uint64
	for _, r := range recipients {
		if r.Addr == (common.Address{}) && r.Weight == 0 {
			continue
		}
		if r.Addr == (common.Address{}) {
			return nil, fmt.Errorf("weighted recipient has zero address")
		}
		if r.Weight == 0 {
			return nil, fmt.Errorf("recipient %s has zero weight", r.Addr.Hex())
		}
		active = append(active, r)
		sum += r.Weight
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no active recipients")
	}
	if sum != TotalWeight {
		return nil, fmt.Errorf("weights sum to %d, want %d", sum, TotalWeight)
	}

	return &Weighted{stable: stable, self: self, recipients: active, logger: logger}, nil
}

// Distribute transfers the adapter's current free stablecoin balance to the
// recipients by weight. The last recipient receives the rounding remainder
// so the full balance always leaves the adapter.
func (w *Weighted) Distribute(ctx context.Context) error {
	balance, err := w.stable.BalanceOf(ctx, w.self)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if balance.Sign() == 0 {
		return nil
	}

	remaining := new(big.Int).Set(balance)
	for i, r := range w.recipients {
		share := new(big.Int)
		if i == len(w.recipients)-1 {
			share.Set(remaining)
		} else {
			share.Mul(balance, new(big.Int).SetUint64(r.Weight))
			share.Quo(share, big.NewInt(TotalWeight))
		}
		if share.Sign() == 0 {
			continue
		}
		if err := w.stable.Transfer(ctx, r.Addr, share); err != nil {
			return fmt.Errorf("transfer to %s: %w", r.Addr.Hex(), err)
		}
		remaining.Sub(remaining, share)
	}

	w.logger.Info("revenue distributed",
		zap.String("amount", balance.String()),
		zap.Int("recipients", len(w.recipients)),
	)
	return nil
}
