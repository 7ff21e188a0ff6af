// Package wallet mediates all interaction with an external wallet provider
// and translates its low-level responses into the service's vocabulary. It
// implements no chain logic of its own.
package wallet

import (
	"context"
	"fmt"
	"math/big"
)

// Provider is the narrow surface the gateway needs from an injected wallet
// capability. A test double can substitute the real provider without any
// environment-specific globals.
type Provider interface {
	// RequestAccounts asks the provider for account access and returns the
	// granted addresses, primary first.
	RequestAccounts(ctx context.Context) ([]string, error)
	// SwitchChain asks the provider to make chainID the active network. An
	// unrecognized chain is reported with code ErrCodeUnknownChain.
	SwitchChain(ctx context.Context, chainID string) error
	// AddChain registers a network configuration with the provider.
	AddChain(ctx context.Context, params ChainParams) error
	// BalanceAt returns the native-currency balance in minor units.
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	// EstimateGas returns the gas units a call would consume.
	EstimateGas(ctx context.Context, msg CallMsg) (*big.Int, error)
	// GasPrice returns the current gas price in minor units.
	GasPrice(ctx context.Context) (*big.Int, error)
	// SendTransaction submits a signed transfer and returns its hash.
	SendTransaction(ctx context.Context, msg CallMsg) (string, error)
	// TransactionReceipt returns the inclusion receipt, or nil when the
	// transaction is not yet included.
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// ChainParams describes a network for SwitchChain/AddChain.
type ChainParams struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls"`
}

// Currency names the chain's native currency.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// CallMsg describes a value transfer.
type CallMsg struct {
	From     string
	To       string
	Value    *big.Int
	Gas      *big.Int
	GasPrice *big.Int
}

// Receipt is a transaction inclusion receipt. Status 1 means success.
type Receipt struct {
	TxHash      string
	Status      uint64
	BlockNumber uint64
}

// Provider-side error codes, as surfaced by injected wallet providers.
const (
	ErrCodeUserRejected = 4001
	ErrCodeUnknownChain = 4902
	ErrCodeInternal     = -32603
)

// ProviderError is a coded error from the underlying provider.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}
