// Package streams provides CRUD over live stream records.
package streams

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamcast/streamcast/internal/domain/stream"
	"github.com/streamcast/streamcast/internal/services/users"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Service manages stream records.
type Service struct {
	store storage.StreamStore
	users *users.Service
	log   *logger.Logger
}

// New constructs a stream service.
func New(store storage.StreamStore, userSvc *users.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("streams")
	}
	return &Service{store: store, users: userSvc, log: log}
}

// CreateParams carries the fields of a stream-start request.
type CreateParams struct {
	Title          string
	CreatorAddress string
	Category       string
	Thumbnail      string
	Description    string
}

// Create ensures the creator's profile exists (flagged as streamer), then
// creates the stream as live.
func (s *Service) Create(ctx context.Context, params CreateParams) (stream.Stream, error) {
	if strings.TrimSpace(params.Title) == "" {
		return stream.Stream{}, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(params.CreatorAddress) == "" {
		return stream.Stream{}, fmt.Errorf("creator address is required")
	}

	creator, err := s.users.Ensure(ctx, params.CreatorAddress, true)
	if err != nil {
		return stream.Stream{}, fmt.Errorf("ensure creator: %w", err)
	}

	created, err := s.store.CreateStream(ctx, stream.Stream{
		Title:          params.Title,
		Creator:        creator.Username,
		CreatorAddress: creator.Address,
		Category:       params.Category,
		Thumbnail:      params.Thumbnail,
		Description:    params.Description,
		IsLive:         true,
	})
	if err != nil {
		return stream.Stream{}, err
	}

	s.log.WithField("stream_id", created.ID).
		WithField("creator", created.CreatorAddress).
		Info("stream created")
	return created, nil
}

// List returns the currently live streams.
func (s *Service) List(ctx context.Context) ([]stream.Stream, error) {
	return s.store.ListStreams(ctx, true)
}

// Get returns a stream by id.
func (s *Service) Get(ctx context.Context, id string) (stream.Stream, error) {
	return s.store.GetStream(ctx, id)
}

// Update applies a shallow merge of the supplied fields.
func (s *Service) Update(ctx context.Context, id string, upd stream.Update) (stream.Stream, error) {
	return s.store.UpdateStream(ctx, id, upd)
}

// Delete removes a stream.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteStream(ctx, id); err != nil {
		return err
	}
	s.log.WithField("stream_id", id).Info("stream deleted")
	return nil
}
