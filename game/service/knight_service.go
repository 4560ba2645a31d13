package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/knight-path/game/knight"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// KnightService defines all knight-related operations
type KnightService interface {
	// Session Management
	CreateSession(ctx context.Context, start knight.Position) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Session queries
	PossibleMoves(ctx context.Context, sessionID string, from *knight.Position) (*MovesResult, error)
	ShortestPath(ctx context.Context, sessionID string, target knight.Position) (*DistanceResult, error)
	GetQueryHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Stateless queries
	Moves(ctx context.Context, from knight.Position) (*MovesResult, error)
	Distance(ctx context.Context, from, to knight.Position) (*DistanceResult, error)
}

// SessionManager defines session storage operations. Get and List return
// copies; all changes go through the manager.
type SessionManager interface {
	Create(id string, start knight.Position) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	RecordQuery(id string, record QueryRecord) (QueryRecord, error)
	Queries(id string) ([]QueryRecord, error)
	Save(id string) error
}

// Session represents an active knight session
type Session struct {
	ID             string
	Pathfinder     *knight.Pathfinder
	Queries        []QueryRecord
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
