package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lockday/internal/domain"
	"lockday/internal/ledger"
	"lockday/internal/notify"
	"lockday/internal/processing"
)

const recentNotifications = 20

type Config struct {
	Catalog          *domain.Catalog
	Acceptor         Acceptor
	Registry         *processing.Registry
	Recorder         ledger.Recorder
	Messages         *notify.Messages
	Hub              *notify.Hub
	PersistByDefault bool
	IdleTTL          time.Duration
	Logger           zerolog.Logger
}

// Manager owns the open tool screens. Screens are independent of each other.
type Manager struct {
	cfg Config
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Controller
}

func NewManager(cfg Config) *Manager {
	if cfg.Catalog == nil {
		cfg.Catalog = domain.DefaultCatalog()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = ledger.Nop{}
	}
	if cfg.Messages == nil {
		cfg.Messages = notify.NewMessages()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Manager{cfg: cfg, now: time.Now, sessions: make(map[string]*Controller)}
}

// Create opens a screen for toolID. locale picks the notification language.
func (m *Manager) Create(toolID, locale string) (*Controller, error) {
	tool, err := m.cfg.Catalog.Lookup(toolID)
	if err != nil {
		return nil, err
	}
	strategy, err := m.cfg.Registry.For(tool.ID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	recent := notify.NewLog(recentNotifications)
	var notifier notify.Notifier = recent
	if m.cfg.Hub != nil {
		notifier = notify.Multi(recent, m.cfg.Hub.Notifier(id))
	}
	c := &Controller{
		id:       id,
		tool:     tool,
		acceptor: m.cfg.Acceptor,
		strategy: strategy,
		recorder: m.cfg.Recorder,
		messages: m.cfg.Messages,
		notifier: notifier,
		recent:   recent,
		locale:   m.cfg.Messages.Locale(locale),
		logger:   m.cfg.Logger.With().Str("session", id).Str("tool", string(tool.ID)).Logger(),
		now:      m.now,
		state:    StateIdle,
		persist:  m.cfg.PersistByDefault,
		lastSeen: m.now(),
	}

	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()

	c.logger.Debug().Msg("session opened")
	return c, nil
}

func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	c.touch()
	return c, nil
}

// Remove closes a screen. Work still in flight settles into the discarded
// controller.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		c.Clear()
		m.closeEvents(id)
	}
	return ok
}

func (m *Manager) closeEvents(id string) {
	if m.cfg.Hub != nil {
		m.cfg.Hub.Close(id)
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes screens idle for longer than the configured TTL.
func (m *Manager) Reap(now time.Time) int {
	m.mu.Lock()
	var stale []*Controller
	for id, c := range m.sessions {
		if now.Sub(c.idleSince()) > m.cfg.IdleTTL && c.State() != StateProcessing {
			stale = append(stale, c)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range stale {
		c.Clear()
		m.closeEvents(c.ID())
	}
	return len(stale)
}

// Run reaps idle screens until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.IdleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Reap(m.now()); n > 0 {
				m.cfg.Logger.Info().Int("reaped", n).Int("open", m.Len()).Msg("reaped idle sessions")
			}
		}
	}
}
