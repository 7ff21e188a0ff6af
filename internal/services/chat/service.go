// Package chat manages per-stream chat messages and live fan-out to
// websocket subscribers.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streamcast/streamcast/internal/domain/social"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

// subscriber buffers outbound messages for one websocket client. A client
// that falls too far behind is dropped rather than blocking the hub.
const subscriberBuffer = 32

// Service stores chat messages and broadcasts them to stream subscribers.
type Service struct {
	store   storage.ChatStore
	streams storage.StreamStore
	log     *logger.Logger

	mu   sync.Mutex
	subs map[string]map[chan social.ChatMessage]struct{}
}

// New constructs a chat service.
func New(store storage.ChatStore, streams storage.StreamStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("chat")
	}
	return &Service{
		store:   store,
		streams: streams,
		log:     log,
		subs:    make(map[string]map[chan social.ChatMessage]struct{}),
	}
}

// PostParams carries the fields of a chat message submission.
type PostParams struct {
	UserAddress string
	Message     string
	IsTip       bool
	TipAmount   float64
}

// Post stores a message on a stream and broadcasts it to subscribers.
func (s *Service) Post(ctx context.Context, streamID string, params PostParams) (social.ChatMessage, error) {
	if strings.TrimSpace(params.UserAddress) == "" {
		return social.ChatMessage{}, fmt.Errorf("user address is required")
	}
	if strings.TrimSpace(params.Message) == "" {
		return social.ChatMessage{}, fmt.Errorf("message is required")
	}
	if _, err := s.streams.GetStream(ctx, streamID); err != nil {
		return social.ChatMessage{}, err
	}

	msg, err := s.store.AddChatMessage(ctx, social.ChatMessage{
		StreamID:    streamID,
		UserAddress: params.UserAddress,
		Message:     params.Message,
		IsTip:       params.IsTip,
		TipAmount:   params.TipAmount,
	})
	if err != nil {
		return social.ChatMessage{}, err
	}
	s.broadcast(msg)
	return msg, nil
}

// List returns the stored messages for a stream in posting order.
func (s *Service) List(ctx context.Context, streamID string) ([]social.ChatMessage, error) {
	if _, err := s.streams.GetStream(ctx, streamID); err != nil {
		return nil, err
	}
	return s.store.ListChatMessages(ctx, streamID)
}

// Subscribe registers a live feed for a stream. The caller must invoke the
// returned cancel func when done; the channel is closed on cancel.
func (s *Service) Subscribe(streamID string) (<-chan social.ChatMessage, func()) {
	ch := make(chan social.ChatMessage, subscriberBuffer)
	s.mu.Lock()
	set, ok := s.subs[streamID]
	if !ok {
		set = make(map[chan social.ChatMessage]struct{})
		s.subs[streamID] = set
	}
	set[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[streamID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(s.subs, streamID)
				}
			}
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Service) broadcast(msg social.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[msg.StreamID] {
		select {
		case ch <- msg:
		default:
			s.log.WithField("stream_id", msg.StreamID).Warn("dropping message for slow chat subscriber")
		}
	}
}
