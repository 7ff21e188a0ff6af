package wallet

import "errors"

// Error taxonomy surfaced to callers. Connectivity and balance errors are
// user-visible and not retried automatically.
var (
	// ErrWalletUnavailable means no provider is injected at all.
	ErrWalletUnavailable = errors.New("wallet provider not available")
	// ErrNoAccounts means the provider granted access but holds no accounts.
	ErrNoAccounts = errors.New("no accounts found")
	// ErrNotConnected means an operation requiring a session was attempted
	// without one.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrInsufficientFunds means balance cannot cover amount plus fees.
	ErrInsufficientFunds = errors.New("insufficient funds for transfer and fees")
	// ErrUserRejected means the user declined the connection or transaction.
	ErrUserRejected = errors.New("rejected by user")
	// ErrProviderInternal is an opaque provider-side failure.
	ErrProviderInternal = errors.New("provider internal error")
)
