// Package storage defines the persistence interfaces for the ledger: users,
// streams, tips, follows and chat messages. Implementations own all entity
// state; callers never retain authoritative copies.
package storage

import (
	"context"
	"errors"

	"github.com/streamcast/streamcast/internal/domain/social"
	"github.com/streamcast/streamcast/internal/domain/stream"
	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/domain/user"
)

// ErrNotFound marks lookups and mutations that target a missing record.
var ErrNotFound = errors.New("not found")

// ErrTipFinalized marks a finalize attempt against a tip that already reached
// a terminal status. The earlier terminal state stands; no credit is applied.
var ErrTipFinalized = errors.New("tip already finalized")

// ErrFollowExists marks a duplicate follow for the same address pair.
var ErrFollowExists = errors.New("follow already exists")

// UserStore persists wallet-address-keyed user profiles. Addresses are
// normalized to lowercase on every read and write.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, address string) (user.User, error)
	UpdateUser(ctx context.Context, address string, upd user.ProfileUpdate) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// StreamStore persists stream records.
type StreamStore interface {
	CreateStream(ctx context.Context, s stream.Stream) (stream.Stream, error)
	GetStream(ctx context.Context, id string) (stream.Stream, error)
	ListStreams(ctx context.Context, liveOnly bool) ([]stream.Stream, error)
	UpdateStream(ctx context.Context, id string, upd stream.Update) (stream.Stream, error)
	DeleteStream(ctx context.Context, id string) error
}

// TipStore persists tip transactions. FinalizeTip is the single mutation a
// tip receives after creation: it moves the record to a terminal status and,
// when that status is confirmed, credits the recipient's lifetime earnings in
// the same atomic step so the credit is applied exactly once.
type TipStore interface {
	CreateTip(ctx context.Context, t tip.Transaction) (tip.Transaction, error)
	GetTip(ctx context.Context, id string) (tip.Transaction, error)
	ListTipsByAddress(ctx context.Context, address string) ([]tip.Transaction, error)
	FinalizeTip(ctx context.Context, id string, status tip.Status) (tip.Transaction, error)
}

// FollowStore persists follow records and maintains the denormalized
// follower/following counters on both users.
type FollowStore interface {
	CreateFollow(ctx context.Context, follower, following string) (social.Follow, error)
	DeleteFollow(ctx context.Context, follower, following string) error
	ListFollows(ctx context.Context, address string) ([]social.Follow, error)
}

// ChatStore persists stream-scoped chat messages.
type ChatStore interface {
	AddChatMessage(ctx context.Context, msg social.ChatMessage) (social.ChatMessage, error)
	ListChatMessages(ctx context.Context, streamID string) ([]social.ChatMessage, error)
}
