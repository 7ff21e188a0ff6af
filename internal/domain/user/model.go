package user

import "time"

// User is a wallet-address-keyed viewer or streamer profile. The address is
// the identity; it is stored lowercase. Balance is informational only; the
// authoritative balance lives on-chain.
type User struct {
	Address     string    `json:"address"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar,omitempty"`
	Balance     float64   `json:"balance"`
	NFTs        int       `json:"nfts"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	TotalEarned float64   `json:"totalEarned"`
	IsStreamer  bool      `json:"isStreamer"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultUsername derives the placeholder name for a freshly created profile.
func DefaultUsername(address string) string {
	if len(address) <= 6 {
		return "User" + address
	}
	return "User" + address[len(address)-6:]
}
