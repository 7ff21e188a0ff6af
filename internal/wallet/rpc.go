package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// RPCProvider implements Provider over an Ethereum-style JSON-RPC endpoint,
// for deployments where the node manages the signing accounts. Chain
// switching is meaningless against a fixed endpoint: SwitchChain verifies the
// node serves the requested chain and AddChain is rejected.
type RPCProvider struct {
	rpcURL     string
	httpClient *http.Client
}

var _ Provider = (*RPCProvider)(nil)

// RPCConfig holds provider configuration.
type RPCConfig struct {
	RPCURL  string
	Timeout time.Duration
}

// NewRPCProvider creates a JSON-RPC backed provider.
func NewRPCProvider(cfg RPCConfig) (*RPCProvider, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &RPCProvider{
		rpcURL:     cfg.RPCURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      int             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call makes a JSON-RPC call and unwraps the result. RPC-level failures come
// back as *ProviderError so the gateway taxonomy applies.
func (p *RPCProvider) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, &ProviderError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	return rpcResp.Result, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	result, err := p.call(ctx, "eth_accounts", nil)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) SwitchChain(ctx context.Context, chainID string) error {
	result, err := p.call(ctx, "eth_chainId", nil)
	if err != nil {
		return err
	}

	var active string
	if err := json.Unmarshal(result, &active); err != nil {
		return fmt.Errorf("decode chain id: %w", err)
	}
	if !strings.EqualFold(active, chainID) {
		return &ProviderError{
			Code:    ErrCodeUnknownChain,
			Message: fmt.Sprintf("endpoint serves chain %s, not %s", active, chainID),
		}
	}
	return nil
}

func (p *RPCProvider) AddChain(_ context.Context, params ChainParams) error {
	return fmt.Errorf("cannot add chain %s to a fixed RPC endpoint", params.ChainID)
}

func (p *RPCProvider) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	result, err := p.call(ctx, "eth_getBalance", []interface{}{address, "latest"})
	if err != nil {
		return nil, err
	}
	return decodeQuantity(result)
}

func (p *RPCProvider) EstimateGas(ctx context.Context, msg CallMsg) (*big.Int, error) {
	result, err := p.call(ctx, "eth_estimateGas", []interface{}{encodeCallMsg(msg)})
	if err != nil {
		return nil, err
	}
	return decodeQuantity(result)
}

func (p *RPCProvider) GasPrice(ctx context.Context) (*big.Int, error) {
	result, err := p.call(ctx, "eth_gasPrice", nil)
	if err != nil {
		return nil, err
	}
	return decodeQuantity(result)
}

func (p *RPCProvider) SendTransaction(ctx context.Context, msg CallMsg) (string, error) {
	result, err := p.call(ctx, "eth_sendTransaction", []interface{}{encodeCallMsg(msg)})
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", fmt.Errorf("decode transaction hash: %w", err)
	}
	return txHash, nil
}

func (p *RPCProvider) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	result, err := p.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}

	var raw struct {
		TransactionHash string `json:"transactionHash"`
		Status          string `json:"status"`
		BlockNumber     string `json:"blockNumber"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	status, err := parseHexUint(raw.Status)
	if err != nil {
		return nil, fmt.Errorf("decode receipt status: %w", err)
	}
	blockNumber, err := parseHexUint(raw.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("decode receipt block: %w", err)
	}

	return &Receipt{
		TxHash:      raw.TransactionHash,
		Status:      status,
		BlockNumber: blockNumber,
	}, nil
}

func encodeCallMsg(msg CallMsg) map[string]string {
	out := map[string]string{
		"from": msg.From,
		"to":   msg.To,
	}
	if msg.Value != nil {
		out["value"] = hexQuantity(msg.Value)
	}
	if msg.Gas != nil {
		out["gas"] = hexQuantity(msg.Gas)
	}
	if msg.GasPrice != nil {
		out["gasPrice"] = hexQuantity(msg.GasPrice)
	}
	return out
}

func hexQuantity(v *big.Int) string {
	return "0x" + v.Text(16)
}

func decodeQuantity(raw json.RawMessage) (*big.Int, error) {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("decode quantity: %w", err)
	}

	value, ok := new(big.Int).SetString(strings.TrimPrefix(encoded, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", encoded)
	}
	return value, nil
}

func parseHexUint(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, nil
	}
	value, ok := new(big.Int).SetString(strings.TrimPrefix(encoded, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex value %q", encoded)
	}
	return value.Uint64(), nil
}
