package social

import "time"

// Follow links a follower to the address they follow. One record per pair.
type Follow struct {
	ID               string    `json:"id"`
	FollowerAddress  string    `json:"followerAddress"`
	FollowingAddress string    `json:"followingAddress"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ChatMessage is a stream-scoped chat line. Tip messages carry the amount so
// the chat pane can render them distinctly.
type ChatMessage struct {
	ID          string    `json:"id"`
	StreamID    string    `json:"streamId"`
	UserAddress string    `json:"userAddress"`
	Message     string    `json:"message"`
	IsTip       bool      `json:"isTip"`
	TipAmount   float64   `json:"tipAmount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
