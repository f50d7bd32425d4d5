// Package sim provides an in-memory rendition of the adapter's external
// collaborators: a StableSwap-style two-asset pool with LP shares, the
// stablecoin and counter-asset tokens, capability checks, and a counting
// revenue sink. The whole environment snapshots and rolls back as a unit,
// which is what the adapter's atomicity boundary expects.
package sim

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/USDU-Core/usdu-core/internal/adapter"
)

type state struct {
	poolBalances [2]*big.Int
	totalShares  *big.Int
	shares       map[common.Address]*big.Int
	stable       map[common.Address]*big.Int
	counter      map[common.Address]*big.Int
	virtualPrice *big.Int
	sinkCalls    int
}

func (s *state) clone() *state {
	out := &state{
		poolBalances: [2]*big.Int{
			new(big.Int).Set(s.poolBalances[0]),
			new(big.Int).Set(s.poolBalances[1]),
		},
		totalShares:  new(big.Int).Set(s.totalShares),
		shares:       cloneBalances(s.shares),
		stable:       cloneBalances(s.stable),
		counter:      cloneBalances(s.counter),
		virtualPrice: new(big.Int).Set(s.virtualPrice),
		sinkCalls:    s.sinkCalls,
	}
	return out
}

func cloneBalances(in map[common.Address]*big.Int) map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(in))
	for addr, amount := range in {
		out[addr] = new(big.Int).Set(amount)
	}
	return out
}

// Env is the in-memory collaborator environment. The adapter account is the
// implicit sender of every pool and token call, mirroring the on-chain setup
// where the adapter contract is msg.sender for its own collaborator calls.
type Env struct {
	ref  adapter.PoolReference
	self common.Address

	st    *state
	snaps []*state

	guardians map[common.Address]bool
	curators  map[common.Address]bool
	modules   map[common.Address]bool
}

// NewEnv builds an environment with empty pool and balances and a virtual
// price of 1.0 in stablecoin units.
func NewEnv(ref adapter.PoolReference, self common.Address) *Env {
	return &Env{
		ref:  ref,
		self: self,
		st: &state{
			poolBalances: [2]*big.Int{big.NewInt(0), big.NewInt(0)},
			totalShares:  big.NewInt(0),
			shares:       make(map[common.Address]*big.Int),
			stable:       make(map[common.Address]*big.Int),
			counter:      make(map[common.Address]*big.Int),
			virtualPrice: new(big.Int).Exp(big.NewInt(10), big.NewInt(adapter.StableDecimals), nil),
		},
		guardians: make(map[common.Address]bool),
		curators:  make(map[common.Address]bool),
		modules:   make(map[common.Address]bool),
	}
}

// Snapshot captures the full environment state and returns a revision id.
func (e *Env) Snapshot() int {
	e.snaps = append(e.snaps, e.st.clone())
	return len(e.snaps) - 1
}

// Rollback restores the state captured at rev and discards later snapshots.
func (e *Env) Rollback(rev int) {
	if rev < 0 || rev >= len(e.snaps) {
		return
	}
	e.st = e.snaps[rev]
	e.snaps = e.snaps[:rev]
}

// Pool returns the pool collaborator view.
func (e *Env) Pool() *Pool { return &Pool{env: e} }

// Stable returns the stablecoin collaborator view.
func (e *Env) Stable() *StableCoin { return &StableCoin{env: e} }

// Counter returns the counter-asset collaborator view.
func (e *Env) Counter() *CounterToken { return &CounterToken{env: e} }

// Sink returns the counting revenue sink.
func (e *Env) Sink() *CountingSink { return &CountingSink{env: e} }

// Access returns the capability-check collaborator.
func (e *Env) Access() *Access { return &Access{env: e} }

// SetGuardian grants or revokes the guardian capability.
func (e *Env) SetGuardian(addr common.Address, ok bool) { e.guardians[addr] = ok }

// SetCurator grants or revokes the curator capability.
func (e *Env) SetCurator(addr common.Address, ok bool) { e.curators[addr] = ok }

// SetModule grants or revokes the module capability.
func (e *Env) SetModule(addr common.Address, ok bool) { e.modules[addr] = ok }

// FundCounter credits the counter-asset balance of addr.
func (e *Env) FundCounter(addr common.Address, amount *big.Int) {
	credit(e.st.counter, addr, amount)
}

// FundStable credits the stablecoin balance of addr.
func (e *Env) FundStable(addr common.Address, amount *big.Int) {
	credit(e.st.stable, addr, amount)
}

// SeedPool sets the pool's raw asset balances directly, minting matching
// shares to nobody. Used to shape an initial pool for scenarios.
func (e *Env) SeedPool(stableAmount, counterAmount, totalShares *big.Int) {
	e.st.poolBalances[e.ref.StableIndex] = new(big.Int).Set(stableAmount)
	e.st.poolBalances[e.ref.CounterIndex] = new(big.Int).Set(counterAmount)
	e.st.totalShares = new(big.Int).Set(totalShares)
}

// SetVirtualPrice overrides the share valuation oracle (18-decimal fixed
// point).
func (e *Env) SetVirtualPrice(price *big.Int) {
	e.st.virtualPrice = new(big.Int).Set(price)
}

// Swap moves amountIn of the asset at inIndex into the pool and the
// equal normalized value of the other asset out, shifting the imbalance
// direction the way a trader would.
func (e *Env) Swap(inIndex int, amountIn *big.Int) {
	outIndex := 1 - inIndex
	e.st.poolBalances[inIndex].Add(e.st.poolBalances[inIndex], amountIn)

	amountOut := e.convert(amountIn, inIndex, outIndex)
	out := e.st.poolBalances[outIndex]
	out.Sub(out, amountOut)
	if out.Sign() < 0 {
		out.SetInt64(0)
	}
}

// StableBalance reports the stablecoin balance of addr.
func (e *Env) StableBalance(addr common.Address) *big.Int {
	return balance(e.st.stable, addr)
}

// CounterBalance reports the counter-asset balance of addr.
func (e *Env) CounterBalance(addr common.Address) *big.Int {
	return balance(e.st.counter, addr)
}

// ShareBalance reports the LP share balance of addr.
func (e *Env) ShareBalance(addr common.Address) *big.Int {
	return balance(e.st.shares, addr)
}

// SinkCalls reports how many times the revenue sink was triggered.
func (e *Env) SinkCalls() int { return e.st.sinkCalls }

func (e *Env) decimalsAt(index int) uint8 {
	if index == e.ref.StableIndex {
		return adapter.StableDecimals
	}
	return e.ref.CounterDecimals
}

// convert rescales an amount from one asset's precision to the other's.
func (e *Env) convert(amount *big.Int, fromIndex, toIndex int) *big.Int {
	from := int64(e.decimalsAt(fromIndex))
	to := int64(e.decimalsAt(toIndex))
	out := new(big.Int).Set(amount)
	if to > from {
		out.Mul(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(to-from), nil))
	} else if from > to {
		out.Quo(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(from-to), nil))
	}
	return out
}

func balance(m map[common.Address]*big.Int, addr common.Address) *big.Int {
	if v, ok := m[addr]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func credit(m map[common.Address]*big.Int, addr common.Address, amount *big.Int) {
	if v, ok := m[addr]; ok {
		v.Add(v, amount)
		return
	}
	m[addr] = new(big.Int).Set(amount)
}

func debit(m map[common.Address]*big.Int, addr common.Address, amount *big.Int) bool {
	v, ok := m[addr]
	if !ok || v.Cmp(amount) < 0 {
		return false
	}
	v.Sub(v, amount)
	return true
}
