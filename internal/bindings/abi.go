package bindings

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const poolABIJSON = `[
  {"inputs": [{"name": "i", "type": "uint256"}], "name": "balances", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "get_balances", "outputs": [{"type": "uint256[2]"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "get_virtual_price", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_amounts", "type": "uint256[2]"}, {"name": "_min_mint_amount", "type": "uint256"}], "name": "add_liquidity", "outputs": [{"type": "uint256"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "_burn_amount", "type": "uint256"}, {"name": "i", "type": "int128"}, {"name": "_min_received", "type": "uint256"}], "name": "remove_liquidity_one_coin", "outputs": [{"type": "uint256"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "arg0", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_to", "type": "address"}, {"name": "_value", "type": "uint256"}], "name": "transfer", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "_from", "type": "address"}, {"name": "_to", "type": "address"}, {"name": "_value", "type": "uint256"}], "name": "transferFrom", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

const erc20ABIJSON = `[
  {"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "name": "transfer", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "from", "type": "address"}, {"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "name": "transferFrom", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "spender", "type": "address"}, {"name": "value", "type": "uint256"}], "name": "approve", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

const stableABIJSON = `[
  {"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "name": "transfer", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "from", "type": "address"}, {"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "name": "transferFrom", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}], "name": "mintModule", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"name": "amount", "type": "uint256"}], "name": "burn", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

const accessABIJSON = `[
  {"inputs": [{"name": "addr", "type": "address"}], "name": "isCurator", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "addr", "type": "address"}], "name": "isGuardian", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "addr", "type": "address"}], "name": "isModule", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"}
]`

const distributorABIJSON = `[
  {"inputs": [], "name": "distribute", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

var (
	poolABI     abi.ABI
	poolABIOnce sync.Once
	poolABIErr  error

	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error

	stableABI     abi.ABI
	stableABIOnce sync.Once
	stableABIErr  error

	accessABI     abi.ABI
	accessABIOnce sync.Once
	accessABIErr  error

	distributorABI     abi.ABI
	distributorABIOnce sync.Once
	distributorABIErr  error
)

// PoolABI returns the parsed StableSwap pool ABI.
func PoolABI() (abi.ABI, error) {
	poolABIOnce.Do(func() {
		poolABI, poolABIErr = abi.JSON(strings.NewReader(poolABIJSON))
	})
	return poolABI, poolABIErr
}

// ERC20ABI returns the parsed ERC-20 ABI.
func ERC20ABI() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// StableABI returns the parsed stablecoin ABI including the module surface.
func StableABI() (abi.ABI, error) {
	stableABIOnce.Do(func() {
		stableABI, stableABIErr = abi.JSON(strings.NewReader(stableABIJSON))
	})
	return stableABI, stableABIErr
}

// AccessABI returns the parsed access-control ABI.
func AccessABI() (abi.ABI, error) {
	accessABIOnce.Do(func() {
		accessABI, accessABIErr = abi.JSON(strings.NewReader(accessABIJSON))
	})
	return accessABI, accessABIErr
}

// DistributorABI returns the parsed revenue distributor ABI.
func DistributorABI() (abi.ABI, error) {
	distributorABIOnce.Do(func() {
		distributorABI, distributorABIErr = abi.JSON(strings.NewReader(distributorABIJSON))
	})
	return distributorABI, distributorABIErr
}
