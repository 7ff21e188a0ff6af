package tips

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/metrics"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

// StatusChecker reports the on-chain status of a transaction hash.
type StatusChecker interface {
	TransactionStatus(ctx context.Context, txHash string) (tip.Status, error)
}

// Options bounds the confirmation polling loop.
type Options struct {
	// InitialDelay is how long to wait before the first status query.
	InitialDelay time.Duration
	// PollInterval separates consecutive status queries for one tip.
	PollInterval time.Duration
	// MaxAttempts caps status queries per tip; a tip still pending after
	// the last attempt is finalized as failed.
	MaxAttempts int
}

// DefaultOptions returns the polling parameters used in production.
func DefaultOptions() Options {
	return Options{
		InitialDelay: 5 * time.Second,
		PollInterval: 10 * time.Second,
		MaxAttempts:  30,
	}
}

// Monitor polls transaction status for pending tips and finalizes them.
// Each watched tip gets its own goroutine; a tip is watched at most once.
type Monitor struct {
	store   storage.TipStore
	checker StatusChecker
	opts    Options
	log     *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	ctx     context.Context
	watches map[string]context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewMonitor builds a stopped monitor. Call Start before Watch.
func NewMonitor(store storage.TipStore, checker StatusChecker, opts Options, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewDefault("tip-monitor")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	return &Monitor{
		store:   store,
		checker: checker,
		opts:    opts,
		log:     log,
		watches: make(map[string]context.CancelFunc),
	}
}

// Name implements system.Service.
func (m *Monitor) Name() string { return "tip-monitor" }

// Start implements system.Service.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("tip monitor already running")
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.running = true
	m.log.Info("tip monitor started")
	return nil
}

// Stop cancels all watches and waits for their goroutines to exit.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.cancel()
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.log.Info("tip monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watch begins polling the transaction for the given tip. Watching a tip that
// is already being watched is a no-op.
func (m *Monitor) Watch(tipID, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return errors.New("tip monitor not running")
	}
	if _, ok := m.watches[tipID]; ok {
		return nil
	}
	watchCtx, cancel := context.WithCancel(m.ctx)
	m.watches[tipID] = cancel
	m.wg.Add(1)
	go m.poll(watchCtx, tipID, txHash)
	return nil
}

// Cancel stops the watch for a tip without finalizing it.
func (m *Monitor) Cancel(tipID string) {
	m.mu.Lock()
	cancel, ok := m.watches[tipID]
	if ok {
		delete(m.watches, tipID)
	}
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

func (m *Monitor) release(tipID string) {
	m.mu.Lock()
	if cancel, ok := m.watches[tipID]; ok {
		delete(m.watches, tipID)
		defer cancel()
	}
	m.mu.Unlock()
}

// poll drives one tip to a terminal status. A status query error is treated
// the same as a pending observation: it consumes an attempt, so the watch
// always terminates within MaxAttempts polls.
func (m *Monitor) poll(ctx context.Context, tipID, txHash string) {
	defer m.wg.Done()
	defer m.release(tipID)

	log := m.log.WithField("tip_id", tipID).WithField("tx_hash", txHash)

	if m.opts.InitialDelay > 0 {
		timer := time.NewTimer(m.opts.InitialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		status, err := m.checker.TransactionStatus(ctx, txHash)
		if err != nil {
			log.WithError(err).Warnf("status query failed (attempt %d/%d)", attempt, m.opts.MaxAttempts)
			status = tip.StatusPending
		}

		if status.Terminal() {
			m.finalize(ctx, tipID, status, attempt, log)
			return
		}
		if attempt >= m.opts.MaxAttempts {
			log.Warnf("confirmation window exhausted after %d attempts", attempt)
			m.finalize(ctx, tipID, tip.StatusFailed, attempt, log)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) finalize(ctx context.Context, tipID string, status tip.Status, attempts int, log *logger.Logger) {
	if _, err := m.store.FinalizeTip(ctx, tipID, status); err != nil {
		if errors.Is(err, storage.ErrTipFinalized) {
			log.Debugf("tip already finalized")
			return
		}
		log.WithError(err).Error("could not finalize tip")
		return
	}
	metrics.RecordTipFinalized(string(status), attempts)
	log.Infof("tip finalized as %s after %d attempts", status, attempts)
}
