package model

// ImbalanceSample captures one observation of the pool by the watcher.
type ImbalanceSample struct {
	ChainID        uint64 `json:"chain_id"`
	PoolAddress    string `json:"pool_address"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTime      uint64 `json:"block_time"`
	StableBalance  string `json:"stable_balance"`
	CounterBalance string `json:"counter_balance"`
	VirtualPrice   string `json:"virtual_price"`
	SharesHeld     string `json:"shares_held"`
	CounterHeavy   bool   `json:"counter_heavy"`
	ObservedAt     string `json:"observed_at"`
}
