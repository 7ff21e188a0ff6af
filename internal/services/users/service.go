// Package users manages wallet-address-keyed profiles: lazy creation, profile
// edits, the social follow graph and the earnings leaderboard.
package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/streamcast/streamcast/internal/domain/social"
	"github.com/streamcast/streamcast/internal/domain/user"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Service manages user records.
type Service struct {
	store   storage.UserStore
	follows storage.FollowStore
	log     *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, follows storage.FollowStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, follows: follows, log: log}
}

// Ensure returns the user for an address, creating the profile on first
// reference. Users are never deleted.
func (s *Service) Ensure(ctx context.Context, address string, streamer bool) (user.User, error) {
	if strings.TrimSpace(address) == "" {
		return user.User{}, fmt.Errorf("address is required")
	}

	u, err := s.store.GetUser(ctx, address)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Address:    address,
		IsStreamer: streamer,
	})
	if err != nil {
		// Lost a create race; the winner's record is authoritative.
		if existing, getErr := s.store.GetUser(ctx, address); getErr == nil {
			return existing, nil
		}
		return user.User{}, err
	}

	s.log.WithField("address", created.Address).Info("user created")
	return created, nil
}

// Get returns the user for an address.
func (s *Service) Get(ctx context.Context, address string) (user.User, error) {
	return s.store.GetUser(ctx, address)
}

// UpdateProfile applies profile edits to an existing user.
func (s *Service) UpdateProfile(ctx context.Context, address string, upd user.ProfileUpdate) (user.User, error) {
	updated, err := s.store.UpdateUser(ctx, address, upd)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("address", updated.Address).Info("profile updated")
	return updated, nil
}

// Leaderboard returns users ordered by lifetime earnings, highest first.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]user.User, error) {
	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalEarned != all[j].TotalEarned {
			return all[i].TotalEarned > all[j].TotalEarned
		}
		return all[i].Address < all[j].Address
	})

	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Follow records that follower follows following. Both profiles are created
// lazily so the counters have a home.
func (s *Service) Follow(ctx context.Context, follower, following string) (social.Follow, error) {
	if _, err := s.Ensure(ctx, follower, false); err != nil {
		return social.Follow{}, err
	}
	if _, err := s.Ensure(ctx, following, false); err != nil {
		return social.Follow{}, err
	}
	return s.follows.CreateFollow(ctx, follower, following)
}

// Unfollow removes a follow record.
func (s *Service) Unfollow(ctx context.Context, follower, following string) error {
	return s.follows.DeleteFollow(ctx, follower, following)
}

// Follows lists the follow records an address participates in.
func (s *Service) Follows(ctx context.Context, address string) ([]social.Follow, error) {
	return s.follows.ListFollows(ctx, address)
}
