package wallet

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcast/streamcast/internal/domain/tip"
)

// fakeProvider scripts provider responses for gateway tests.
type fakeProvider struct {
	accounts    []string
	accountsErr error

	switchErr error
	addErr    error
	added     []ChainParams
	switched  []string

	balance    *big.Int
	balanceErr error

	gas      *big.Int
	gasPrice *big.Int

	sendHash string
	sendErr  error
	sent     []CallMsg

	receipts   []*Receipt
	receiptErr error
	receiptIdx int
}

func (f *fakeProvider) RequestAccounts(context.Context) ([]string, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeProvider) SwitchChain(_ context.Context, chainID string) error {
	f.switched = append(f.switched, chainID)
	return f.switchErr
}

func (f *fakeProvider) AddChain(_ context.Context, params ChainParams) error {
	f.added = append(f.added, params)
	return f.addErr
}

func (f *fakeProvider) BalanceAt(context.Context, string) (*big.Int, error) {
	return f.balance, f.balanceErr
}

func (f *fakeProvider) EstimateGas(context.Context, CallMsg) (*big.Int, error) {
	if f.gas == nil {
		return big.NewInt(21000), nil
	}
	return f.gas, nil
}

func (f *fakeProvider) GasPrice(context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return big.NewInt(1), nil
	}
	return f.gasPrice, nil
}

func (f *fakeProvider) SendTransaction(_ context.Context, msg CallMsg) (string, error) {
	f.sent = append(f.sent, msg)
	return f.sendHash, f.sendErr
}

func (f *fakeProvider) TransactionReceipt(context.Context, string) (*Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receiptIdx >= len(f.receipts) {
		return nil, nil
	}
	r := f.receipts[f.receiptIdx]
	f.receiptIdx++
	return r, nil
}

func testChain() ChainParams {
	return ChainParams{
		ChainID:        "0xaa36a7",
		ChainName:      "Sepolia test network",
		NativeCurrency: Currency{Name: "SepoliaETH", Symbol: "ETH", Decimals: 18},
	}
}

func eth(amount int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(amount), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestGateway_ConnectBindsLowercaseSession(t *testing.T) {
	provider := &fakeProvider{accounts: []string{"0xABCdef"}, balance: eth(2)}
	gw := NewGateway(provider, testChain(), nil)

	result, err := gw.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", result.Address)
	assert.InDelta(t, 2.0, result.Balance, 0.0001)
	assert.Equal(t, []string{"0xaa36a7"}, provider.switched)
}

func TestGateway_ConnectWithoutProvider(t *testing.T) {
	gw := NewGateway(nil, testChain(), nil)
	_, err := gw.Connect(context.Background())
	assert.ErrorIs(t, err, ErrWalletUnavailable)
}

func TestGateway_ConnectNoAccounts(t *testing.T) {
	gw := NewGateway(&fakeProvider{}, testChain(), nil)
	_, err := gw.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestGateway_ConnectUserRejected(t *testing.T) {
	provider := &fakeProvider{
		accountsErr: &ProviderError{Code: ErrCodeUserRejected, Message: "user rejected the request"},
	}
	gw := NewGateway(provider, testChain(), nil)
	_, err := gw.Connect(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
}

func TestGateway_ConnectAddsUnknownChain(t *testing.T) {
	provider := &fakeProvider{
		accounts:  []string{"0xabc"},
		balance:   eth(1),
		switchErr: &ProviderError{Code: ErrCodeUnknownChain, Message: "unrecognized chain"},
	}
	gw := NewGateway(provider, testChain(), nil)

	_, err := gw.Connect(context.Background())
	require.NoError(t, err)
	require.Len(t, provider.added, 1)
	assert.Equal(t, "0xaa36a7", provider.added[0].ChainID)
}

func TestGateway_TransferRequiresSession(t *testing.T) {
	gw := NewGateway(&fakeProvider{}, testChain(), nil)
	_, err := gw.Transfer(context.Background(), "0xdest", 1)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGateway_TransferInsufficientFundsSubmitsNothing(t *testing.T) {
	provider := &fakeProvider{
		accounts: []string{"0xabc"},
		balance:  big.NewInt(100), // far below one whole unit plus fees
	}
	gw := NewGateway(provider, testChain(), nil)
	_, err := gw.Connect(context.Background())
	require.NoError(t, err)

	_, err = gw.Transfer(context.Background(), "0xdest", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, provider.sent, "no transaction may be submitted when funds are short")
}

func TestGateway_TransferWaitsForReceipt(t *testing.T) {
	provider := &fakeProvider{
		accounts: []string{"0xabc"},
		balance:  eth(5),
		sendHash: "0xhash",
		receipts: []*Receipt{nil, {TxHash: "0xhash", Status: 1, BlockNumber: 7}},
	}
	gw := NewGateway(provider, testChain(), nil, WithReceiptInterval(time.Millisecond))
	_, err := gw.Connect(context.Background())
	require.NoError(t, err)

	hash, err := gw.Transfer(context.Background(), "0xdest", 1)
	require.NoError(t, err)
	assert.Equal(t, "0xhash", hash)
	require.Len(t, provider.sent, 1)
	assert.Equal(t, "0xabc", provider.sent[0].From)
	assert.Equal(t, "0xdest", provider.sent[0].To)
	assert.Equal(t, eth(1), provider.sent[0].Value)
}

func TestGateway_TransferRevertedTransaction(t *testing.T) {
	provider := &fakeProvider{
		accounts: []string{"0xabc"},
		balance:  eth(5),
		sendHash: "0xhash",
		receipts: []*Receipt{{TxHash: "0xhash", Status: 0}},
	}
	gw := NewGateway(provider, testChain(), nil, WithReceiptInterval(time.Millisecond))
	_, err := gw.Connect(context.Background())
	require.NoError(t, err)

	_, err = gw.Transfer(context.Background(), "0xdest", 1)
	assert.ErrorIs(t, err, ErrProviderInternal)
}

func TestGateway_TransactionStatusMapping(t *testing.T) {
	chain := testChain()

	t.Run("no receipt is pending", func(t *testing.T) {
		gw := NewGateway(&fakeProvider{}, chain, nil)
		status, err := gw.TransactionStatus(context.Background(), "0xh")
		require.NoError(t, err)
		assert.Equal(t, tip.StatusPending, status)
	})

	t.Run("success receipt is confirmed", func(t *testing.T) {
		gw := NewGateway(&fakeProvider{receipts: []*Receipt{{Status: 1}}}, chain, nil)
		status, err := gw.TransactionStatus(context.Background(), "0xh")
		require.NoError(t, err)
		assert.Equal(t, tip.StatusConfirmed, status)
	})

	t.Run("revert receipt is failed", func(t *testing.T) {
		gw := NewGateway(&fakeProvider{receipts: []*Receipt{{Status: 0}}}, chain, nil)
		status, err := gw.TransactionStatus(context.Background(), "0xh")
		require.NoError(t, err)
		assert.Equal(t, tip.StatusFailed, status)
	})

	t.Run("query error is failed", func(t *testing.T) {
		gw := NewGateway(&fakeProvider{receiptErr: &ProviderError{Code: ErrCodeInternal, Message: "boom"}}, chain, nil)
		status, err := gw.TransactionStatus(context.Background(), "0xh")
		require.NoError(t, err)
		assert.Equal(t, tip.StatusFailed, status)
	})

	t.Run("nil provider is failed", func(t *testing.T) {
		gw := NewGateway(nil, chain, nil)
		status, err := gw.TransactionStatus(context.Background(), "0xh")
		require.NoError(t, err)
		assert.Equal(t, tip.StatusFailed, status)
	})
}

func TestGateway_DisconnectDropsSession(t *testing.T) {
	provider := &fakeProvider{accounts: []string{"0xabc"}, balance: eth(1)}
	gw := NewGateway(provider, testChain(), nil)
	_, err := gw.Connect(context.Background())
	require.NoError(t, err)

	gw.Disconnect()
	gw.Disconnect() // repeat is harmless

	_, err = gw.Transfer(context.Background(), "0xdest", 1)
	assert.ErrorIs(t, err, ErrNotConnected)
}
