package stream

import "time"

// Stream is a live broadcast record. CreatorAddress references a User; the
// caller is expected to ensure the user exists before creating the stream.
type Stream struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Creator        string    `json:"creator"`
	CreatorAddress string    `json:"creatorAddress"`
	Viewers        int       `json:"viewers"`
	Category       string    `json:"category"`
	Thumbnail      string    `json:"thumbnail"`
	IsLive         bool      `json:"isLive"`
	Tips           float64   `json:"tips"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Update carries the mutable fields of a stream. Nil pointers leave the
// existing value untouched (shallow merge).
type Update struct {
	Title       *string  `json:"title"`
	Category    *string  `json:"category"`
	Thumbnail   *string  `json:"thumbnail"`
	Description *string  `json:"description"`
	IsLive      *bool    `json:"isLive"`
	Viewers     *int     `json:"viewers"`
	Tips        *float64 `json:"tips"`
}
