package adapter

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/USDU-Core/usdu-core/internal/model"
)

// Ledger tracks outstanding stablecoin debt and cumulative recognized
// revenue. totalMinted never goes below zero; totalRevenue never decreases.
// Mutated only by the adapter's operations.
type Ledger struct {
	mu           sync.Mutex
	totalMinted  *big.Int
	totalRevenue *big.Int
}

// NewLedger returns a zero-initialized ledger.
func NewLedger() *Ledger {
	return &Ledger{
		totalMinted:  big.NewInt(0),
		totalRevenue: big.NewInt(0),
	}
}

// RestoreLedger rebuilds a ledger from a persisted state snapshot.
func RestoreLedger(state model.LedgerState) (*Ledger, error) {
	minted, ok := new(big.Int).SetString(state.TotalMinted, 10)
	if !ok || minted.Sign() < 0 {
		return nil, fmt.Errorf("invalid total minted: %q", state.TotalMinted)
	}
	revenue, ok := new(big.Int).SetString(state.TotalRevenue, 10)
	if !ok || revenue.Sign() < 0 {
		return nil, fmt.Errorf("invalid total revenue: %q", state.TotalRevenue)
	}
	return &Ledger{totalMinted: minted, totalRevenue: revenue}, nil
}

// TotalMinted returns a copy of the outstanding debt.
func (l *Ledger) TotalMinted() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.totalMinted)
}

// TotalRevenue returns a copy of the cumulative recognized revenue.
func (l *Ledger) TotalRevenue() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.totalRevenue)
}

// State returns the ledger as a persistable snapshot.
func (l *Ledger) State() model.LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.LedgerState{
		TotalMinted:  l.totalMinted.String(),
		TotalRevenue: l.totalRevenue.String(),
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (l *Ledger) recordMint(amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalMinted.Add(l.totalMinted, amount)
}

func (l *Ledger) recordRevenue(profit *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalRevenue.Add(l.totalRevenue, profit)
}

// payDown reduces outstanding debt by amount. The caller guarantees
// amount <= totalMinted; the floor at zero protects the invariant regardless.
func (l *Ledger) payDown(amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalMinted.Sub(l.totalMinted, amount)
	if l.totalMinted.Sign() < 0 {
		l.totalMinted.SetInt64(0)
	}
}

// clearMinted zeroes the outstanding debt and returns its previous value.
func (l *Ledger) clearMinted() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := new(big.Int).Set(l.totalMinted)
	l.totalMinted.SetInt64(0)
	return prev
}

type ledgerSnap struct {
	totalMinted  *big.Int
	totalRevenue *big.Int
}

func (l *Ledger) snapshot() ledgerSnap {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ledgerSnap{
		totalMinted:  new(big.Int).Set(l.totalMinted),
		totalRevenue: new(big.Int).Set(l.totalRevenue),
	}
}

func (l *Ledger) restore(s ledgerSnap) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalMinted.Set(s.totalMinted)
	l.totalRevenue.Set(s.totalRevenue)
}
