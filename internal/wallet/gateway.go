package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Session identifies one wallet binding: the primary account granted by the
// provider. Re-connecting replaces the session.
type Session struct {
	Address string
}

// ConnectResult is the outcome of a successful Connect.
type ConnectResult struct {
	Address string
	Balance float64
}

// Gateway wraps an injected Provider with the operations the service needs:
// connect, balance query, transfer and transaction-status query. It holds no
// entity state; the only mutable state is the session binding.
type Gateway struct {
	mu       sync.Mutex
	provider Provider
	session  *Session

	target          ChainParams
	log             *logger.Logger
	receiptInterval time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithReceiptInterval sets the delay between inclusion checks during Transfer.
func WithReceiptInterval(d time.Duration) Option {
	return func(g *Gateway) { g.receiptInterval = d }
}

// NewGateway creates a gateway around a provider. A nil provider is allowed;
// Connect then fails with ErrWalletUnavailable.
func NewGateway(provider Provider, target ChainParams, log *logger.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = logger.NewDefault("wallet")
	}
	g := &Gateway{
		provider:        provider,
		target:          target,
		log:             log,
		receiptInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connect requests account access, switches the provider to the target
// network and binds the primary account as the active session. It returns the
// address and its whole-unit balance.
func (g *Gateway) Connect(ctx context.Context) (ConnectResult, error) {
	if g.provider == nil {
		return ConnectResult{}, ErrWalletUnavailable
	}

	accounts, err := g.provider.RequestAccounts(ctx)
	if err != nil {
		return ConnectResult{}, g.translate(err)
	}
	if len(accounts) == 0 {
		return ConnectResult{}, ErrNoAccounts
	}

	if err := g.switchToTarget(ctx); err != nil {
		return ConnectResult{}, err
	}

	address := strings.ToLower(accounts[0])
	g.mu.Lock()
	g.session = &Session{Address: address}
	g.mu.Unlock()

	balance := g.Balance(ctx, address)

	g.log.WithField("address", address).Info("wallet connected")
	return ConnectResult{Address: address, Balance: balance}, nil
}

// switchToTarget makes the target network active, adding its configuration
// when the provider does not recognize it. User rejection and a failed add
// are surfaced; any other switch failure is logged and tolerated.
func (g *Gateway) switchToTarget(ctx context.Context) error {
	err := g.provider.SwitchChain(ctx, g.target.ChainID)
	if err == nil {
		return nil
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		switch perr.Code {
		case ErrCodeUnknownChain:
			if addErr := g.provider.AddChain(ctx, g.target); addErr != nil {
				return fmt.Errorf("add network %s: %w", g.target.ChainName, g.translate(addErr))
			}
			return nil
		case ErrCodeUserRejected:
			return fmt.Errorf("switch network: %w", ErrUserRejected)
		}
	}

	g.log.WithError(err).Warnf("network switch to %s failed", g.target.ChainName)
	return nil
}

// Balance returns the whole-unit native-currency balance for an address.
// A missing session or a failed query is logged and reported as zero; this
// operation never fails.
func (g *Gateway) Balance(ctx context.Context, address string) float64 {
	g.mu.Lock()
	bound := g.session != nil
	g.mu.Unlock()

	if g.provider == nil || !bound {
		g.log.Warn("balance requested without a bound provider")
		return 0
	}

	raw, err := g.provider.BalanceAt(ctx, address)
	if err != nil {
		g.log.WithError(err).WithField("address", address).Warn("balance query failed")
		return 0
	}
	return fromMinorUnits(raw, g.target.NativeCurrency.Decimals)
}

// Transfer submits a native-currency transfer from the bound account, waits
// for inclusion and returns the transaction hash. It refuses to submit when
// the balance cannot cover amount plus the estimated network fee.
func (g *Gateway) Transfer(ctx context.Context, recipient string, amount float64) (string, error) {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()

	if g.provider == nil || session == nil {
		return "", ErrNotConnected
	}
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}

	value := toMinorUnits(amount, g.target.NativeCurrency.Decimals)

	balance, err := g.provider.BalanceAt(ctx, session.Address)
	if err != nil {
		return "", g.translate(err)
	}

	msg := CallMsg{From: session.Address, To: recipient, Value: value}
	gas, err := g.provider.EstimateGas(ctx, msg)
	if err != nil {
		return "", g.translate(err)
	}
	gasPrice, err := g.provider.GasPrice(ctx)
	if err != nil {
		return "", g.translate(err)
	}

	fee := new(big.Int).Mul(gas, gasPrice)
	required := new(big.Int).Add(value, fee)
	if balance.Cmp(required) < 0 {
		return "", fmt.Errorf("balance %s short of %s: %w",
			balance.String(), required.String(), ErrInsufficientFunds)
	}

	msg.Gas = gas
	msg.GasPrice = gasPrice
	txHash, err := g.provider.SendTransaction(ctx, msg)
	if err != nil {
		return "", g.translate(err)
	}

	receipt, err := g.awaitReceipt(ctx, txHash)
	if err != nil {
		return "", err
	}
	if receipt.Status != 1 {
		return "", fmt.Errorf("transaction %s reverted: %w", txHash, ErrProviderInternal)
	}

	g.log.WithField("tx_hash", receipt.TxHash).Infof("transferred %v to %s", amount, recipient)
	return receipt.TxHash, nil
}

func (g *Gateway) awaitReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	ticker := time.NewTicker(g.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.provider.TransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, g.translate(err)
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TransactionStatus reports a transaction's inclusion state: pending while no
// receipt exists, confirmed on a success receipt, failed otherwise. A failed
// query also reads as failed. It never returns an error.
func (g *Gateway) TransactionStatus(ctx context.Context, txHash string) (tip.Status, error) {
	if g.provider == nil {
		return tip.StatusFailed, nil
	}

	receipt, err := g.provider.TransactionReceipt(ctx, txHash)
	if err != nil {
		g.log.WithError(err).WithField("tx_hash", txHash).Warn("transaction status query failed")
		return tip.StatusFailed, nil
	}
	if receipt == nil {
		return tip.StatusPending, nil
	}
	if receipt.Status == 1 {
		return tip.StatusConfirmed, nil
	}
	return tip.StatusFailed, nil
}

// Disconnect drops the session binding. Safe to call repeatedly.
func (g *Gateway) Disconnect() {
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()
}

// translate maps provider-specific failures into the gateway taxonomy.
func (g *Gateway) translate(err error) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch {
		case perr.Code == ErrCodeUserRejected:
			return fmt.Errorf("%s: %w", perr.Message, ErrUserRejected)
		case perr.Code == ErrCodeInternal:
			return fmt.Errorf("%s: %w", perr.Message, ErrProviderInternal)
		case strings.Contains(strings.ToLower(perr.Message), "insufficient funds"):
			return fmt.Errorf("%s: %w", perr.Message, ErrInsufficientFunds)
		}
		return fmt.Errorf("wallet operation failed: %s", perr.Message)
	}
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return fmt.Errorf("%v: %w", err, ErrInsufficientFunds)
	}
	return err
}

// toMinorUnits converts a whole-unit decimal amount into minor units.
func toMinorUnits(amount float64, decimals int) *big.Int {
	scale := new(big.Float).SetInt(pow10(decimals))
	scaled := new(big.Float).Mul(big.NewFloat(amount), scale)
	result, _ := scaled.Int(nil)
	return result
}

// fromMinorUnits converts minor units into a whole-unit decimal amount.
func fromMinorUnits(raw *big.Int, decimals int) float64 {
	scale := new(big.Float).SetInt(pow10(decimals))
	value := new(big.Float).Quo(new(big.Float).SetInt(raw), scale)
	result, _ := value.Float64()
	return result
}

func pow10(exp int) *big.Int {
	if exp <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
