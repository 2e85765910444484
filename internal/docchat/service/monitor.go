package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// UpstreamMonitor periodically pings the document service and remembers the
// outcome for the readiness probe.
type UpstreamMonitor struct {
	Index    DocumentIndex
	Logger   *slog.Logger
	Interval time.Duration
	Timeout  time.Duration

	healthy   atomic.Bool
	lastCheck atomic.Int64 // unix nanos

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewUpstreamMonitor creates a monitor. If interval is 0 or negative it
// defaults to 30 seconds.
func NewUpstreamMonitor(index DocumentIndex, logger *slog.Logger, interval time.Duration) *UpstreamMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &UpstreamMonitor{
		Index:    index,
		Logger:   logger,
		Interval: interval,
		Timeout:  5 * time.Second,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. It is non-blocking; call Stop to
// shut it down. Only the first call has an effect.
func (m *UpstreamMonitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.run()
	m.Logger.Info("upstream monitor started", "interval", m.Interval)
}

// Stop blocks until an in-flight check has finished. It is a no-op for a
// monitor that was never started.
func (m *UpstreamMonitor) Stop() {
	if !m.started.Load() {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stopCh)
		<-m.doneCh
		m.Logger.Info("upstream monitor stopped")
	})
}

// Healthy reports the result of the most recent check. It is false before
// the first check completes.
func (m *UpstreamMonitor) Healthy() bool { return m.healthy.Load() }

// LastCheck is the time of the most recent check, zero if none ran yet.
func (m *UpstreamMonitor) LastCheck() time.Time {
	n := m.lastCheck.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func (m *UpstreamMonitor) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	m.Check(context.Background())

	for {
		select {
		case <-ticker.C:
			m.Check(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Check pings the service once and records the result.
func (m *UpstreamMonitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	err := m.Index.Ping(ctx)
	ok := err == nil
	was := m.healthy.Swap(ok)
	m.lastCheck.Store(time.Now().UnixNano())

	switch {
	case !ok && was:
		m.Logger.Warn("document service became unhealthy", "error", err)
	case !ok:
		m.Logger.Debug("document service still unhealthy", "error", err)
	case !was:
		m.Logger.Info("document service healthy")
	}
	return ok
}
