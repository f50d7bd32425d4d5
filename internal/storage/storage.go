package storage

import (
	"context"

	"github.com/USDU-Core/usdu-core/internal/model"
)

// Journal defines a sink for completed operation records.
type Journal interface {
	Append(ctx context.Context, rec model.OperationRecord) error
}

// LedgerStore persists the debt ledger across restarts.
type LedgerStore interface {
	Load(ctx context.Context) (model.LedgerState, bool, error)
	Save(ctx context.Context, state model.LedgerState) error
}
