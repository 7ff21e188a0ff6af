package tip

import "time"

// Status is the lifecycle state of a tip. Transitions are one-directional:
// pending -> confirmed | failed, nothing after that.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Transaction is a single tip: sender, recipient, amount and the on-chain
// transaction hash it is waiting on. Addresses are stored lowercase.
type Transaction struct {
	ID          string    `json:"id"`
	FromAddress string    `json:"fromAddress"`
	ToAddress   string    `json:"toAddress"`
	Amount      float64   `json:"amount"`
	TxHash      string    `json:"txHash"`
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	StreamID    string    `json:"streamId,omitempty"`
}
