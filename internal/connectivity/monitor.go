// Package connectivity tracks whether the remote store is reachable and
// fans status changes out to subscribers. It never polls: transitions are
// fed in by whatever connectivity signal the host platform offers.
package connectivity

import (
	"log/slog"
	"sync"
	"time"
)

// State is the sync-status indicator shown to the user.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
	StateSyncing State = "syncing"
)

const defaultSettleDelay = time.Second

// Monitor owns the online flag and the subscriber registry. It is
// constructed at app start and torn down with Close.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	syncing     bool
	settle      time.Duration
	settleTimer *time.Timer
	onReconnect func()
	subs        map[int]func(State)
	nextSub     int
	logger      *slog.Logger
}

// NewMonitor creates a Monitor that starts offline. A settle of zero
// uses the default ~1s delay between reconnect and sync trigger.
func NewMonitor(settle time.Duration, logger *slog.Logger) *Monitor {
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	return &Monitor{
		settle: settle,
		subs:   make(map[int]func(State)),
		logger: logger,
	}
}

// OnReconnect registers the synchronization trigger invoked after a
// settled offline-to-online transition.
func (m *Monitor) OnReconnect(fn func()) {
	m.mu.Lock()
	m.onReconnect = fn
	m.mu.Unlock()
}

// Subscribe registers a status listener and returns its disposer.
func (m *Monitor) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Online reports whether the network is currently considered reachable.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// State returns the current indicator state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Monitor) stateLocked() State {
	switch {
	case m.syncing:
		return StateSyncing
	case m.online:
		return StateOnline
	default:
		return StateOffline
	}
}

// subscribersLocked snapshots the listener set so it can be invoked
// without the lock held; a listener may subscribe or dispose reentrantly.
func (m *Monitor) subscribersLocked() []func(State) {
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), st State) {
	for _, fn := range fns {
		fn(st)
	}
}

// Report feeds a connectivity transition from the host signal. A
// transition to online emits a transient syncing status, then fires the
// reconnect trigger after the settle delay so a flapping connection
// doesn't start a doomed drain. A transition to offline is emitted
// immediately; an in-flight drain is left to fail naturally.
func (m *Monitor) Report(online bool) {
	m.mu.Lock()
	if online == m.online {
		m.mu.Unlock()
		return
	}
	m.online = online

	if !online {
		if m.settleTimer != nil {
			m.settleTimer.Stop()
			m.settleTimer = nil
		}
		fns := m.subscribersLocked()
		m.mu.Unlock()

		m.logger.Info("connectivity lost")
		notify(fns, StateOffline)
		return
	}

	m.settleTimer = time.AfterFunc(m.settle, m.settled)
	fns := m.subscribersLocked()
	m.mu.Unlock()

	m.logger.Info("connectivity restored", "settle", m.settle)
	notify(fns, StateSyncing)
}

func (m *Monitor) settled() {
	m.mu.Lock()
	m.settleTimer = nil
	if !m.online {
		// Connection flapped during the settle window.
		m.mu.Unlock()
		return
	}
	fn := m.onReconnect
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// BeginSync marks a drain pass in progress and emits syncing.
func (m *Monitor) BeginSync() {
	m.mu.Lock()
	m.syncing = true
	fns := m.subscribersLocked()
	m.mu.Unlock()

	notify(fns, StateSyncing)
}

// EndSync clears the drain marker and emits whichever of online/offline
// now applies.
func (m *Monitor) EndSync() {
	m.mu.Lock()
	m.syncing = false
	st := m.stateLocked()
	fns := m.subscribersLocked()
	m.mu.Unlock()

	notify(fns, st)
}

// Close stops any pending settle timer and drops all subscribers.
func (m *Monitor) Close() {
	m.mu.Lock()
	if m.settleTimer != nil {
		m.settleTimer.Stop()
		m.settleTimer = nil
	}
	m.subs = make(map[int]func(State))
	m.mu.Unlock()
}
