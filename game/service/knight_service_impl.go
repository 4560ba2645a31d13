package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/wricardo/knight-path/game/knight"
)

// knightServiceImpl implements the KnightService interface
type knightServiceImpl struct {
	sessions SessionManager
	mu       sync.RWMutex
}

// NewKnightService creates a new knight service instance
func NewKnightService(sessions SessionManager) KnightService {
	return &knightServiceImpl{
		sessions: sessions,
	}
}

// CreateSession places a knight on start and opens a session for it
func (s *knightServiceImpl) CreateSession(ctx context.Context, start knight.Position) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", start)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession returns session details
func (s *knightServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *knightServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *knightServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// PossibleMoves lists the legal jumps from `from`, or from the session's
// start square when from is nil
func (s *knightServiceImpl) PossibleMoves(ctx context.Context, sessionID string, from *knight.Position) (*MovesResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	pf := session.Pathfinder
	origin := pf.Position()
	if from != nil {
		if err := pf.Board().Validate(*from); err != nil {
			return nil, err
		}
		origin = *from
	}

	moves := knight.PossibleMoves(pf.Board(), origin)

	record, err := s.sessions.RecordQuery(sessionID, QueryRecord{
		Kind:     QueryMoves,
		From:     origin,
		Moves:    len(moves),
		Possible: moves,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record query: %w", err)
	}

	return &MovesResult{
		SessionID:   session.ID,
		From:        origin,
		Moves:       moves,
		Count:       len(moves),
		QueryNumber: record.QueryNumber,
	}, nil
}

// ShortestPath answers the minimum number of moves from the session's start
// square to target
func (s *knightServiceImpl) ShortestPath(ctx context.Context, sessionID string, target knight.Position) (*DistanceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	pf := session.Pathfinder
	moves, err := pf.ShortestNumberOfMoves(target)
	if err != nil {
		return nil, err
	}

	to := target
	record, err := s.sessions.RecordQuery(sessionID, QueryRecord{
		Kind:  QueryDistance,
		From:  pf.Position(),
		To:    &to,
		Moves: moves,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record query: %w", err)
	}

	return &DistanceResult{
		SessionID:   session.ID,
		From:        pf.Position(),
		To:          target,
		Moves:       moves,
		QueryNumber: record.QueryNumber,
	}, nil
}

// GetQueryHistory returns paginated query history
func (s *knightServiceImpl) GetQueryHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, err := s.sessions.Queries(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	queries := []QueryRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				queries = append(queries, history[i])
			}
		} else {
			queries = append(queries, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Queries:      queries,
		TotalQueries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// Moves lists the legal jumps from a square on the standard board
func (s *knightServiceImpl) Moves(ctx context.Context, from knight.Position) (*MovesResult, error) {
	if err := knight.StandardBoard.Validate(from); err != nil {
		return nil, err
	}

	moves := knight.PossibleMoves(knight.StandardBoard, from)
	return &MovesResult{
		From:  from,
		Moves: moves,
		Count: len(moves),
	}, nil
}

// Distance answers a one-off query without opening a session
func (s *knightServiceImpl) Distance(ctx context.Context, from, to knight.Position) (*DistanceResult, error) {
	pf, err := knight.NewPathfinder(from)
	if err != nil {
		return nil, err
	}

	moves, err := pf.ShortestNumberOfMoves(to)
	if err != nil {
		return nil, err
	}

	return &DistanceResult{
		From:  from,
		To:    to,
		Moves: moves,
	}, nil
}

// sessionInfo expects a copy from the session manager, never its live session
func (s *knightServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		Start:          session.Pathfinder.Position(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		QueryCount:     len(session.Queries),
		PossibleMoves:  session.Pathfinder.PossibleMoves(),
	}
}
