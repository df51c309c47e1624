package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/blackjack"
)

// Action is one engine transition applied to a loaded snapshot
type Action func(blackjack.Snapshot) (blackjack.Snapshot, error)

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Manager creates sessions and applies actions to them one at a time. Two
// requests for the same session never interleave their load and save.
type Manager struct {
	store  Store
	table  *blackjack.Table
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// NewManager creates a manager over a store and a table
func NewManager(store Store, table *blackjack.Table, logger *log.Logger) *Manager {
	return &Manager{
		store:  store,
		table:  table,
		logger: logger.WithPrefix("sessions"),
		locks:  make(map[string]*sessionLock),
	}
}

// Table returns the table actions run against
func (m *Manager) Table() *blackjack.Table {
	return m.table
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Create seats a new player and stores the opening snapshot
func (m *Manager) Create(ctx context.Context, name string, chips int) (string, blackjack.Snapshot, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", blackjack.Snapshot{}, fmt.Errorf("generate session id: %w", err)
	}
	s, err := m.table.NewRound(name, chips)
	if err != nil {
		return "", blackjack.Snapshot{}, err
	}
	if err := m.store.Save(ctx, id.String(), s); err != nil {
		return "", blackjack.Snapshot{}, fmt.Errorf("save new session: %w", err)
	}
	m.logger.Info("Session created", "session", id, "player", name, "chips", chips)
	return id.String(), s, nil
}

// Get loads a session without changing it
func (m *Manager) Get(ctx context.Context, id string) (blackjack.Snapshot, error) {
	unlock := m.lock(id)
	defer unlock()
	return m.store.Load(ctx, id)
}

// Do loads the session, applies fn and saves the result, holding the
// session's lock throughout. A failed action leaves the stored snapshot
// untouched; the snapshot fn returned is passed back with the error so the
// caller can still show its message.
func (m *Manager) Do(ctx context.Context, id string, fn Action) (blackjack.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return blackjack.Snapshot{}, err
	}
	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.Load(ctx, id)
	if err != nil {
		return blackjack.Snapshot{}, err
	}
	next, err := fn(s)
	if err != nil {
		return next, err
	}
	if err := m.store.Save(ctx, id, next); err != nil {
		return s, fmt.Errorf("save session %s: %w", id, err)
	}
	return next, nil
}

// Delete ends a session and returns its final snapshot
func (m *Manager) Delete(ctx context.Context, id string) (blackjack.Snapshot, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.Load(ctx, id)
	if err != nil {
		return blackjack.Snapshot{}, err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return s, fmt.Errorf("delete session %s: %w", id, err)
	}
	m.logger.Info("Session closed", "session", id, "chips", s.Player.Chips)
	return s, nil
}
