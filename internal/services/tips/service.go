// Package tips owns the tip lifecycle: record creation and the asynchronous
// on-chain confirmation that moves each tip to a terminal status.
package tips

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/metrics"
	"github.com/streamcast/streamcast/internal/services/users"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Service creates tip records and hands them to the monitor.
type Service struct {
	store   storage.TipStore
	users   *users.Service
	monitor *Monitor
	log     *logger.Logger
}

// New constructs a tip service. The monitor may be nil, in which case created
// tips stay pending until finalized through some other path (useful in tests).
func New(store storage.TipStore, userSvc *users.Service, monitor *Monitor, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tips")
	}
	return &Service{store: store, users: userSvc, monitor: monitor, log: log}
}

// CreateParams carries the fields of a tip submission.
type CreateParams struct {
	FromAddress string
	ToAddress   string
	Amount      float64
	TxHash      string
	StreamID    string
}

// Create records a pending tip and schedules its confirmation watch. Both
// participant profiles are created lazily.
func (s *Service) Create(ctx context.Context, params CreateParams) (tip.Transaction, error) {
	if strings.TrimSpace(params.FromAddress) == "" || strings.TrimSpace(params.ToAddress) == "" {
		return tip.Transaction{}, fmt.Errorf("from and to addresses are required")
	}
	if strings.TrimSpace(params.TxHash) == "" {
		return tip.Transaction{}, fmt.Errorf("transaction hash is required")
	}
	if params.Amount <= 0 {
		return tip.Transaction{}, fmt.Errorf("amount must be positive")
	}

	if _, err := s.users.Ensure(ctx, params.FromAddress, false); err != nil {
		return tip.Transaction{}, fmt.Errorf("ensure sender: %w", err)
	}
	if _, err := s.users.Ensure(ctx, params.ToAddress, false); err != nil {
		return tip.Transaction{}, fmt.Errorf("ensure recipient: %w", err)
	}

	created, err := s.store.CreateTip(ctx, tip.Transaction{
		FromAddress: params.FromAddress,
		ToAddress:   params.ToAddress,
		Amount:      params.Amount,
		TxHash:      params.TxHash,
		StreamID:    params.StreamID,
	})
	if err != nil {
		return tip.Transaction{}, err
	}
	metrics.RecordTipCreated()

	if s.monitor != nil {
		if err := s.monitor.Watch(created.ID, created.TxHash); err != nil {
			s.log.WithError(err).WithField("tip_id", created.ID).
				Warn("could not schedule confirmation watch")
		}
	}

	s.log.WithField("tip_id", created.ID).
		WithField("tx_hash", created.TxHash).
		Infof("tip created: %v from %s to %s", created.Amount, created.FromAddress, created.ToAddress)
	return created, nil
}

// Get returns a tip by id.
func (s *Service) Get(ctx context.Context, id string) (tip.Transaction, error) {
	return s.store.GetTip(ctx, id)
}

// History lists the tips an address sent or received.
func (s *Service) History(ctx context.Context, address string) ([]tip.Transaction, error) {
	return s.store.ListTipsByAddress(ctx, address)
}
