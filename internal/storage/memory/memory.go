package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamcast/streamcast/internal/domain/social"
	"github.com/streamcast/streamcast/internal/domain/stream"
	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/domain/user"
	"github.com/streamcast/streamcast/internal/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use. All state is volatile and lost on process restart.
//
// Compound mutations that must be atomic, such as tip finalization plus the
// earnings credit, run inside a single critical section so no caller can
// observe or interleave a partial update.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	streams      map[string]stream.Stream
	tips         map[string]tip.Transaction
	follows      map[string]social.Follow
	chatMessages map[string][]social.ChatMessage
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.StreamStore = (*Store)(nil)
var _ storage.TipStore = (*Store)(nil)
var _ storage.FollowStore = (*Store)(nil)
var _ storage.ChatStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		streams:      make(map[string]stream.Stream),
		tips:         make(map[string]tip.Transaction),
		follows:      make(map[string]social.Follow),
		chatMessages: make(map[string][]social.ChatMessage),
	}
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Address = normalizeAddress(u.Address)
	if u.Address == "" {
		return user.User{}, fmt.Errorf("user address is required")
	}
	if _, exists := s.users[u.Address]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.Address)
	}
	if u.Username == "" {
		u.Username = user.DefaultUsername(u.Address)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.Address] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, address string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[normalizeAddress(address)]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", address, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, address string, upd user.ProfileUpdate) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeAddress(address)
	u, ok := s.users[key]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", address, storage.ErrNotFound)
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.IsStreamer != nil {
		u.IsStreamer = *upd.IsStreamer
	}
	u.UpdatedAt = time.Now().UTC()

	s.users[key] = u
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	return result, nil
}

// StreamStore implementation --------------------------------------------------

func (s *Store) CreateStream(_ context.Context, st stream.Stream) (stream.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = newID("stream")
	} else if _, exists := s.streams[st.ID]; exists {
		return stream.Stream{}, fmt.Errorf("stream %s already exists", st.ID)
	}

	st.CreatorAddress = normalizeAddress(st.CreatorAddress)
	if st.Thumbnail == "" {
		st.Thumbnail = "/placeholder.jpg"
	}

	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	s.streams[st.ID] = st
	return st, nil
}

func (s *Store) GetStream(_ context.Context, id string) (stream.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streams[id]
	if !ok {
		return stream.Stream{}, fmt.Errorf("stream %s: %w", id, storage.ErrNotFound)
	}
	return st, nil
}

func (s *Store) ListStreams(_ context.Context, liveOnly bool) ([]stream.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]stream.Stream, 0, len(s.streams))
	for _, st := range s.streams {
		if liveOnly && !st.IsLive {
			continue
		}
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) UpdateStream(_ context.Context, id string, upd stream.Update) (stream.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[id]
	if !ok {
		return stream.Stream{}, fmt.Errorf("stream %s: %w", id, storage.ErrNotFound)
	}

	if upd.Title != nil {
		st.Title = *upd.Title
	}
	if upd.Category != nil {
		st.Category = *upd.Category
	}
	if upd.Thumbnail != nil {
		st.Thumbnail = *upd.Thumbnail
	}
	if upd.Description != nil {
		st.Description = *upd.Description
	}
	if upd.IsLive != nil {
		st.IsLive = *upd.IsLive
	}
	if upd.Viewers != nil {
		st.Viewers = *upd.Viewers
	}
	if upd.Tips != nil {
		st.Tips = *upd.Tips
	}
	st.UpdatedAt = time.Now().UTC()

	s.streams[id] = st
	return st, nil
}

func (s *Store) DeleteStream(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.streams[id]; !ok {
		return fmt.Errorf("stream %s: %w", id, storage.ErrNotFound)
	}
	delete(s.streams, id)
	return nil
}

// TipStore implementation -----------------------------------------------------

func (s *Store) CreateTip(_ context.Context, t tip.Transaction) (tip.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID("tip")
	} else if _, exists := s.tips[t.ID]; exists {
		return tip.Transaction{}, fmt.Errorf("tip %s already exists", t.ID)
	}

	t.FromAddress = normalizeAddress(t.FromAddress)
	t.ToAddress = normalizeAddress(t.ToAddress)
	t.Status = tip.StatusPending
	t.Timestamp = time.Now().UTC()

	s.tips[t.ID] = t
	return t, nil
}

func (s *Store) GetTip(_ context.Context, id string) (tip.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tips[id]
	if !ok {
		return tip.Transaction{}, fmt.Errorf("tip %s: %w", id, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTipsByAddress(_ context.Context, address string) ([]tip.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalizeAddress(address)
	result := make([]tip.Transaction, 0)
	for _, t := range s.tips {
		if t.FromAddress == key || t.ToAddress == key {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// FinalizeTip moves a pending tip to a terminal status. When the status is
// confirmed, the recipient's lifetime earnings are credited under the same
// lock, creating the profile lazily if the recipient was never seen before.
// A second finalize attempt reports ErrTipFinalized and changes nothing.
func (s *Store) FinalizeTip(_ context.Context, id string, status tip.Status) (tip.Transaction, error) {
	if !status.Terminal() {
		return tip.Transaction{}, fmt.Errorf("status %s is not terminal", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tips[id]
	if !ok {
		return tip.Transaction{}, fmt.Errorf("tip %s: %w", id, storage.ErrNotFound)
	}
	if t.Status.Terminal() {
		return t, fmt.Errorf("tip %s: %w", id, storage.ErrTipFinalized)
	}

	t.Status = status
	s.tips[id] = t

	if status == tip.StatusConfirmed {
		s.creditEarningsLocked(t.ToAddress, t.Amount)
	}
	return t, nil
}

func (s *Store) creditEarningsLocked(address string, amount float64) {
	now := time.Now().UTC()
	u, ok := s.users[address]
	if !ok {
		u = user.User{
			Address:   address,
			Username:  user.DefaultUsername(address),
			CreatedAt: now,
		}
	}
	u.TotalEarned += amount
	u.UpdatedAt = now
	s.users[address] = u
}

// FollowStore implementation --------------------------------------------------

func followKey(follower, following string) string {
	return follower + ">" + following
}

func (s *Store) CreateFollow(_ context.Context, follower, following string) (social.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	follower = normalizeAddress(follower)
	following = normalizeAddress(following)
	if follower == "" || following == "" {
		return social.Follow{}, fmt.Errorf("follower and following addresses are required")
	}
	if follower == following {
		return social.Follow{}, fmt.Errorf("cannot follow self")
	}

	key := followKey(follower, following)
	if _, exists := s.follows[key]; exists {
		return social.Follow{}, fmt.Errorf("%s -> %s: %w", follower, following, storage.ErrFollowExists)
	}

	f := social.Follow{
		ID:               newID("follow"),
		FollowerAddress:  follower,
		FollowingAddress: following,
		CreatedAt:        time.Now().UTC(),
	}
	s.follows[key] = f
	s.adjustFollowCountsLocked(follower, following, 1)
	return f, nil
}

func (s *Store) DeleteFollow(_ context.Context, follower, following string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	follower = normalizeAddress(follower)
	following = normalizeAddress(following)
	key := followKey(follower, following)
	if _, ok := s.follows[key]; !ok {
		return fmt.Errorf("%s -> %s: %w", follower, following, storage.ErrNotFound)
	}
	delete(s.follows, key)
	s.adjustFollowCountsLocked(follower, following, -1)
	return nil
}

func (s *Store) ListFollows(_ context.Context, address string) ([]social.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalizeAddress(address)
	result := make([]social.Follow, 0)
	for _, f := range s.follows {
		if f.FollowerAddress == key || f.FollowingAddress == key {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) adjustFollowCountsLocked(follower, following string, delta int) {
	now := time.Now().UTC()
	if u, ok := s.users[follower]; ok {
		u.Following += delta
		u.UpdatedAt = now
		s.users[follower] = u
	}
	if u, ok := s.users[following]; ok {
		u.Followers += delta
		u.UpdatedAt = now
		s.users[following] = u
	}
}

// ChatStore implementation ----------------------------------------------------

func (s *Store) AddChatMessage(_ context.Context, msg social.ChatMessage) (social.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.StreamID == "" {
		return social.ChatMessage{}, fmt.Errorf("stream id is required")
	}
	msg.ID = newID("msg")
	msg.UserAddress = normalizeAddress(msg.UserAddress)
	msg.CreatedAt = time.Now().UTC()

	s.chatMessages[msg.StreamID] = append(s.chatMessages[msg.StreamID], msg)
	return msg, nil
}

func (s *Store) ListChatMessages(_ context.Context, streamID string) ([]social.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]social.ChatMessage(nil), s.chatMessages[streamID]...), nil
}
