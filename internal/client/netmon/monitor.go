// Package netmon watches connectivity to the remote backend and drives the
// sync engine from it: coming online triggers a run, going offline
// publishes the offline status and suppresses automatic runs.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/syncer"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// Prober checks whether the backend is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// Engine is the part of *syncer.Engine the monitor drives.
type Engine interface {
	Run(ctx context.Context) bool
	SetOnline(online bool)
	Subscribe(fn syncer.Listener) (unsubscribe func())
}

const defaultProbeTimeout = 3 * time.Second

type Monitor struct {
	prober       Prober
	engine       Engine
	interval     time.Duration
	probeTimeout time.Duration
	logger       logging.Logger

	mu     sync.Mutex
	online bool
	known  bool
}

func New(p Prober, e Engine, interval time.Duration, l logging.Logger) *Monitor {
	return &Monitor{
		prober:       p,
		engine:       e,
		interval:     interval,
		probeTimeout: defaultProbeTimeout,
		logger:       l.With("module", "netmon"),
	}
}

// Online reports the last observed connectivity.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a sync status observer.
func (m *Monitor) Subscribe(fn syncer.Listener) (unsubscribe func()) {
	return m.engine.Subscribe(fn)
}

// Run probes immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check probes once and acts on a connectivity transition.
func (m *Monitor) Check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	err := m.prober.Ping(pctx)
	cancel()

	m.SetOnline(ctx, err == nil)
}

// SetOnline feeds a connectivity observation, from the prober or from the
// host. A transition to online triggers a sync run.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := !m.known || m.online != online
	m.online = online
	m.known = true
	m.mu.Unlock()

	if !changed {
		return
	}

	m.engine.SetOnline(online)
	if !online {
		m.logger.Info(ctx, "Switched to offline mode")
		return
	}
	m.logger.Info(ctx, "Switched to online mode")
	m.engine.Run(ctx)
}

// Kick requests an automatic run, e.g. after a local write. It does nothing
// while offline.
func (m *Monitor) Kick(ctx context.Context) bool {
	if !m.Online() {
		return false
	}
	return m.engine.Run(ctx)
}

// Trigger is the manual sync trigger. It runs even when the last probe
// failed; the engine reports the outcome.
func (m *Monitor) Trigger(ctx context.Context) bool {
	return m.engine.Run(ctx)
}
