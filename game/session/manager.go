package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles knight session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create creates a new session with the given ID and a knight on start
func (m *Manager) Create(id string, start knight.Position) (*service.Session, error) {
	if strings.ContainsAny(id, `/\.`) {
		return nil, ErrInvalidSessionID
	}

	pf, err := knight.NewPathfinder(start)
	if err != nil {
		return nil, fmt.Errorf("failed to create pathfinder: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
		for m.sessionExists(id) {
			id = m.generateSessionID()
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Pathfinder:     pf,
		Queries:        []service.QueryRecord{},
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			// Log error but don't fail the creation
			log.Printf("Warning: Failed to persist session %s: %v", id, err)
		}
	}

	return snapshot(session), nil
}

// snapshot copies session so it can be read after m.mu is released.
// The caller must hold m.mu.
func snapshot(session *service.Session) *service.Session {
	c := *session
	c.Queries = make([]service.QueryRecord, len(session.Queries))
	copy(c.Queries, session.Queries)
	return &c
}

// Get returns a copy of the session (case-insensitive). Changes go through
// the manager's own methods.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	if exists {
		session = snapshot(session)
	}
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && !strings.ContainsAny(id, `/\.`) && m.persistence.Exists(id) {
		session, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if loaded, ok := m.sessions[strings.ToLower(id)]; ok {
			// Loaded concurrently
			return snapshot(loaded), nil
		}
		m.sessions[strings.ToLower(id)] = session

		return snapshot(session), nil
	}

	return nil, ErrSessionNotFound
}

// List returns copies of all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, snapshot(session))
	}

	return result
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	inMemory := false

	if session, exists := m.sessions[lowerID]; exists {
		delete(m.sessions, lowerID)
		inMemory = true
		// Files are named after the original ID
		id = session.ID
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; exists {
		delete(m.sessions, lowerID)
		return nil
	}

	return ErrSessionNotFound
}

// UpdateLastAccessed updates the last accessed time for a session, loading
// it from persistence first if needed
func (m *Manager) UpdateLastAccessed(id string) error {
	if _, err := m.Get(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	m.persist(session)

	return nil
}

// RecordQuery appends record to the session's query log, stamping its
// number and time, and returns the stored record
func (m *Manager) RecordQuery(id string, record service.QueryRecord) (service.QueryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return service.QueryRecord{}, ErrSessionNotFound
	}

	now := time.Now()
	record.QueryNumber = len(session.Queries) + 1
	record.Timestamp = now.Unix()
	session.Queries = append(session.Queries, record)
	session.LastAccessedAt = now
	m.persist(session)

	return record, nil
}

// Queries returns a copy of the session's query log
func (m *Manager) Queries(id string) ([]service.QueryRecord, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return session.Queries, nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration, both from memory and from persistence. Persisted sessions
// that are not loaded are not checked.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if !session.LastAccessedAt.Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++

		if m.persistence != nil && m.persistence.Exists(session.ID) {
			if err := m.persistence.Delete(session.ID); err != nil {
				log.Printf("Warning: Failed to delete expired session %s: %v", session.ID, err)
			}
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		if _, exists := m.sessions[strings.ToLower(id)]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", id, err)
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loadedCount)
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	errorCount := 0
	for _, session := range m.sessions {
		if err := m.persistence.Save(session); err != nil {
			log.Printf("Warning: Failed to save session %s: %v", session.ID, err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}

// persist writes session through to storage; caller holds m.mu
func (m *Manager) persist(session *service.Session) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		log.Printf("Warning: Failed to persist session %s: %v", session.ID, err)
	}
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive); caller holds m.mu
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
