package playback

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Manager owns one Controller per video element (slot) and fans their state
// changes out to subscribers.
type Manager struct {
	engine   Engine
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	slots   map[string]*Controller
	subs    map[int]func(slot string, s Snapshot)
	nextSub int
}

func NewManager(engine Engine, stallCheckInterval time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		engine:   engine,
		interval: stallCheckInterval,
		log:      logger,
		slots:    make(map[string]*Controller),
		subs:     make(map[int]func(string, Snapshot)),
	}
}

// Slot returns the controller for id, creating it on first use.
func (m *Manager) Slot(id string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.slots[id]; ok {
		return c
	}
	c := NewController(m.engine, ControllerOptions{
		StallCheckInterval: m.interval,
		Logger:             m.log.With("slot", id),
		OnChange:           func(s Snapshot) { m.publish(id, s) },
	})
	m.slots[id] = c
	return c
}

func (m *Manager) Lookup(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.slots[id]
	return c, ok
}

// Remove tears the slot down and forgets it. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.slots[id]
	delete(m.slots, id)
	m.mu.Unlock()

	if ok {
		c.Teardown()
	}
}

// Snapshots returns the state of every slot.
func (m *Manager) Snapshots() map[string]Snapshot {
	m.mu.Lock()
	slots := make(map[string]*Controller, len(m.slots))
	for id, c := range m.slots {
		slots[id] = c
	}
	m.mu.Unlock()

	out := make(map[string]Snapshot, len(slots))
	for id, c := range slots {
		out[id] = c.Snapshot()
	}
	return out
}

// Active lists the slots currently playing or stalled, sorted.
func (m *Manager) Active() []string {
	var ids []string
	for id, s := range m.Snapshots() {
		if s.Active() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Subscribe registers fn for every slot state change. Callbacks run on the
// goroutine that caused the change and must not block.
func (m *Manager) Subscribe(fn func(slot string, s Snapshot)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publish(slot string, s Snapshot) {
	m.mu.Lock()
	fns := make([]func(string, Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(slot, s)
	}
}

// Close tears down every slot.
func (m *Manager) Close() {
	m.mu.Lock()
	slots := m.slots
	m.slots = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range slots {
		c.Teardown()
	}
	m.log.Info("playback: manager closed", "slots", len(slots))
}
