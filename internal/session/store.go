// Package session persists round snapshots between requests and serialises
// the actions applied to each one.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/fileutil"
)

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Store persists one snapshot per session id
type Store interface {
	Load(ctx context.Context, id string) (blackjack.Snapshot, error)
	Save(ctx context.Context, id string, s blackjack.Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data     []byte
	lastSeen time.Time
}

// MemoryStore keeps encoded snapshots in memory and forgets sessions that
// have been idle for longer than the TTL. A zero TTL never expires.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	clock    quartz.Clock
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore(ttl time.Duration, clock quartz.Clock) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		clock:    clock,
	}
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.ttl > 0 && m.clock.Since(e.lastSeen) > m.ttl
}

// Load returns the session's snapshot and refreshes its idle timer
func (m *MemoryStore) Load(ctx context.Context, id string) (blackjack.Snapshot, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok && m.expired(e) {
		delete(m.sessions, id)
		ok = false
	}
	if ok {
		e.lastSeen = m.clock.Now()
		m.sessions[id] = e
	}
	m.mu.Unlock()

	if !ok {
		return blackjack.Snapshot{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return blackjack.Decode(e.data)
}

// Save stores the snapshot
func (m *MemoryStore) Save(ctx context.Context, id string, s blackjack.Snapshot) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memoryEntry{data: data, lastSeen: m.clock.Now()}
	return nil
}

// Delete forgets the session
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes every expired session and returns how many were removed
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := m.clock.NewTicker(interval, "session", "sweep")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// FileStore keeps one JSON file per session in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps an id to its file. Only UUIDs are accepted, so an id can never
// name a file outside the directory.
func (f *FileStore) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return filepath.Join(f.dir, u.String()+".json"), nil
}

// Load reads and validates the session file
func (f *FileStore) Load(ctx context.Context, id string) (blackjack.Snapshot, error) {
	path, err := f.path(id)
	if err != nil {
		return blackjack.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return blackjack.Snapshot{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return blackjack.Snapshot{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return blackjack.Decode(data)
}

// Save writes the session file atomically
func (f *FileStore) Save(ctx context.Context, id string, s blackjack.Snapshot) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o600)
}

// Delete removes the session file
func (f *FileStore) Delete(ctx context.Context, id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	_, err = fileutil.RemoveIfExists(path)
	return err
}
