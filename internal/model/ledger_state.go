package model

// LedgerState is the persisted snapshot of the debt ledger.
type LedgerState struct {
	TotalMinted  string `json:"total_minted"`
	TotalRevenue string `json:"total_revenue"`
	UpdatedAt    string `json:"updated_at"`
}
