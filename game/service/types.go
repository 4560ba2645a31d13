package service

import (
	"time"

	"github.com/wricardo/knight-path/game/knight"
)

// Query kinds recorded in a session's history
const (
	QueryMoves    = "moves"
	QueryDistance = "distance"
)

// SessionInfo provides information about a knight session
type SessionInfo struct {
	ID             string            `json:"id"`
	Start          knight.Position   `json:"start"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	QueryCount     int               `json:"query_count"`
	PossibleMoves  []knight.Position `json:"possible_moves"`
}

// MovesResult lists the legal jumps from a square
type MovesResult struct {
	SessionID   string            `json:"session_id,omitempty"`
	From        knight.Position   `json:"from"`
	Moves       []knight.Position `json:"moves"`
	Count       int               `json:"count"`
	QueryNumber int               `json:"query_number,omitempty"`
}

// DistanceResult contains the answer to a shortest-distance query
type DistanceResult struct {
	SessionID   string          `json:"session_id,omitempty"`
	From        knight.Position `json:"from"`
	To          knight.Position `json:"to"`
	Moves       int             `json:"moves"`
	QueryNumber int             `json:"query_number,omitempty"`
}

// QueryRecord is a single answered query in a session's history
type QueryRecord struct {
	Kind        string            `json:"kind"`
	From        knight.Position   `json:"from"`
	To          *knight.Position  `json:"to,omitempty"`
	Moves       int               `json:"moves"`
	Possible    []knight.Position `json:"possible,omitempty"`
	Timestamp   int64             `json:"timestamp"`
	QueryNumber int               `json:"query_number"`
}

// HistoryOptions configures query history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated query history
type HistoryResponse struct {
	Queries      []QueryRecord `json:"queries"`
	TotalQueries int           `json:"total_queries"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}
