package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/USDU-Core/usdu-core/internal/model"
)

// FileLedgerStore persists ledger state in a local JSON file using an atomic
// write-then-rename.
type FileLedgerStore struct {
	Path string
}

func (s *FileLedgerStore) Load(_ context.Context) (model.LedgerState, bool, error) {
	if s == nil || s.Path == "" {
		return model.LedgerState{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.LedgerState{}, false, nil
		}
		return model.LedgerState{}, false, fmt.Errorf("read ledger state: %w", err)
	}

	var state model.LedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.LedgerState{}, false, fmt.Errorf("parse ledger state: %w", err)
	}
	return state, true, nil
}

func (s *FileLedgerStore) Save(_ context.Context, state model.LedgerState) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger state dir: %w", err)
		}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal ledger state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename ledger state: %w", err)
	}
	return nil
}
