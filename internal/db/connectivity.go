package db

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Connection banner messages surfaced to the UI-facing session snapshot.
const (
	msgOffline      = "You are offline. Some features may be unavailable."
	msgReconnecting = "Attempting to reconnect..."
	msgUnreachable  = "Unable to connect. Please check your internet connection and try again."
)

// PendingOp is a deferred write queued while the store network is disabled,
// replayed once connectivity resumes.
type PendingOp func(ctx context.Context) error

// RetryConfig bounds the reconnection backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultRetryConfig matches the documented reconnection behavior: five
// attempts starting at one second, growing by a factor of 1.5.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Factor: 1.5}
}

// StatusFunc receives connectivity changes: whether the store network is
// enabled, and a banner-level message ("" when the connection is healthy).
type StatusFunc func(online bool, connectionError string)

// Monitor keeps the store's network toggle aligned with actual
// reachability. It is the single owner of the network-enabled state and of
// the pending-operation queue.
type Monitor struct {
	store  DocumentStore
	logger *zap.Logger
	cfg    RetryConfig

	mu             sync.Mutex
	networkEnabled bool
	pending        []PendingOp
	attempts       int
	bo             *backoff.ExponentialBackOff
	connErr        string
	onStatus       StatusFunc

	// probe reports whether the remote endpoint is reachable. Replaceable
	// in tests.
	probe func(ctx context.Context) bool
}

// NewMonitor creates a connectivity monitor for the given store. The store
// is assumed to start with its network enabled.
func NewMonitor(store DocumentStore, cfg RetryConfig, logger *zap.Logger) *Monitor {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.Multiplier = cfg.Factor
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0
	bo.Reset()

	return &Monitor{
		store:          store,
		logger:         logger,
		cfg:            cfg,
		networkEnabled: true,
		bo:             bo,
		probe:          dialProbe,
	}
}

// OnStatusChange registers a callback for connectivity state changes.
func (m *Monitor) OnStatusChange(fn StatusFunc) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
}

// IsOnline reports whether the store network is currently enabled.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.networkEnabled
}

// ConnectionError returns the current banner-level connectivity message, or
// "" when the connection is healthy.
func (m *Monitor) ConnectionError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connErr
}

// PendingCount returns the number of queued deferred writes.
func (m *Monitor) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// AddPendingOperation enqueues a deferred write, replayed in FIFO order on
// the next successful network enable.
func (m *Monitor) AddPendingOperation(op PendingOp) {
	m.mu.Lock()
	m.pending = append(m.pending, op)
	m.mu.Unlock()
}

// HandleOnline re-enables the store network if it is disabled, then drains
// the pending-operation queue. If enabling fails, a retry is scheduled with
// exponential backoff.
func (m *Monitor) HandleOnline(ctx context.Context) error {
	m.mu.Lock()
	if m.networkEnabled {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.store.EnableNetwork(ctx); err != nil {
		m.logger.Error("failed to enable store network", zap.Error(err))
		m.scheduleRetry(ctx)
		return err
	}

	m.mu.Lock()
	m.networkEnabled = true
	m.attempts = 0
	m.bo.Reset()
	m.connErr = ""
	m.mu.Unlock()
	m.logger.Info("network connection enabled")
	m.notify()

	m.drainPending(ctx)
	return nil
}

// HandleOffline flushes in-flight writes and disables the store network so
// the client stops blocking on unreachable calls. A fresh offline/online
// transition re-arms the retry budget.
func (m *Monitor) HandleOffline(ctx context.Context) error {
	if err := m.store.WaitForPendingWrites(ctx); err != nil {
		m.logger.Error("failed to flush pending writes", zap.Error(err))
	}
	if err := m.store.DisableNetwork(ctx); err != nil {
		m.logger.Error("failed to disable store network", zap.Error(err))
		return err
	}

	m.mu.Lock()
	m.networkEnabled = false
	m.attempts = 0
	m.bo.Reset()
	m.connErr = msgOffline
	m.mu.Unlock()
	m.notify()
	return nil
}

// scheduleRetry arms a backoff-delayed re-attempt of HandleOnline. After the
// attempt cap the terminal connectivity message is surfaced and retrying
// stops until the next offline/online transition.
func (m *Monitor) scheduleRetry(ctx context.Context) {
	m.mu.Lock()
	if m.attempts >= m.cfg.MaxAttempts {
		m.connErr = msgUnreachable
		m.mu.Unlock()
		m.logger.Error("max reconnection attempts reached", zap.Int("attempts", m.cfg.MaxAttempts))
		m.notify()
		return
	}
	m.attempts++
	attempt := m.attempts
	delay := m.bo.NextBackOff()
	m.connErr = msgReconnecting
	m.mu.Unlock()

	m.logger.Warn("scheduling network enable retry",
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", m.cfg.MaxAttempts),
		zap.Duration("delay", delay),
	)
	m.notify()

	time.AfterFunc(delay, func() {
		m.HandleOnline(ctx)
	})
}

// drainPending replays queued writes one at a time from the front. On
// failure the operation is put back at the front and draining stops, so
// replay order is preserved under partial failure.
func (m *Monitor) drainPending(ctx context.Context) {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			return
		}
		op := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		if err := op(ctx); err != nil {
			m.logger.Error("pending operation failed, will retry on next reconnect", zap.Error(err))
			m.mu.Lock()
			m.pending = append([]PendingOp{op}, m.pending...)
			m.mu.Unlock()
			return
		}
	}
}

func (m *Monitor) notify() {
	m.mu.Lock()
	fn := m.onStatus
	online := m.networkEnabled
	connErr := m.connErr
	m.mu.Unlock()
	if fn != nil {
		fn(online, connErr)
	}
}

// Watch polls reachability on the given interval and drives the
// online/offline transitions, standing in for the browser's network events.
// It returns when ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := m.probe(ctx)
	if last {
		m.HandleOnline(ctx)
	} else {
		m.HandleOffline(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reachable := m.probe(ctx)
			if reachable == last {
				continue
			}
			last = reachable
			if reachable {
				m.HandleOnline(ctx)
			} else {
				m.HandleOffline(ctx)
			}
		}
	}
}

// dialProbe checks reachability of the Firestore endpoint.
func dialProbe(ctx context.Context) bool {
	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", "firestore.googleapis.com:443")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
