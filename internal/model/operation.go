package model

// Operation kinds recorded in the journal.
const (
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpReconcile       = "reconcile"
	OpReduceMint      = "reduce_mint"
	OpEmergencyRedeem = "emergency_redeem"
)

// OperationRecord is the normalized representation of a completed adapter
// operation for the journal. Token amounts are decimal strings to survive
// JSON round-trips without precision loss.
type OperationRecord struct {
	Kind         string `json:"kind"`
	Caller       string `json:"caller"`
	CounterIn    string `json:"counter_in,omitempty"`
	StableMinted string `json:"stable_minted,omitempty"`
	SharesIn     string `json:"shares_in,omitempty"`
	SharesOut    string `json:"shares_out,omitempty"`
	Proceeds     string `json:"proceeds,omitempty"`
	Profit       string `json:"profit,omitempty"`
	Burned       string `json:"burned,omitempty"`
	TotalMinted  string `json:"total_minted"`
	TotalRevenue string `json:"total_revenue"`
	ExecutedAt   string `json:"executed_at"`
}
