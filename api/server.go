package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
	"github.com/wricardo/knight-path/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.KnightService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(knightService service.KnightService, hub *websocket.Hub) *Server {
	s := &Server{
		service: knightService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Session queries
	api.HandleFunc("/sessions/{id}/moves", s.handleSessionMoves).Methods("GET")
	api.HandleFunc("/sessions/{id}/distance", s.handleSessionDistance).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Stateless queries
	api.HandleFunc("/moves", s.handleMoves).Methods("GET")
	api.HandleFunc("/distance", s.handleDistance).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("", s.handleIndex).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and knight errors onto status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, knight.ErrInvalidPosition):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, knight.ErrUnreachable):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrSessionAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// queryPosition parses an "x,y" query parameter
func queryPosition(r *http.Request, name string) (knight.Position, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return knight.Position{}, fmt.Errorf("%w: %s parameter required", knight.ErrInvalidPosition, name)
	}
	return knight.ParsePosition(raw)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start *knight.Position `json:"start"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Start == nil {
		respondError(w, http.StatusBadRequest, "start is required")
		return
	}

	session, err := s.service.CreateSession(r.Context(), *req.Start)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[%s] session created, knight on %s", session.ID, session.Start)
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Query Handlers

func (s *Server) handleSessionMoves(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var from *knight.Position
	if r.URL.Query().Get("from") != "" {
		pos, err := queryPosition(r, "from")
		if err != nil {
			respondServiceError(w, err)
			return
		}
		from = &pos
	}

	result, err := s.service.PossibleMoves(r.Context(), sessionID, from)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSessionDistance(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Target *knight.Position `json:"target"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Target == nil {
		respondError(w, http.StatusBadRequest, "target is required")
		return
	}

	result, err := s.service.ShortestPath(r.Context(), sessionID, *req.Target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		s.hub.BroadcastDistance(result.SessionID, result)
	}

	log.Printf("[%s] #%d %s -> %s = %d moves", result.SessionID, result.QueryNumber, result.From, result.To, result.Moves)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	query := r.URL.Query()

	opts := service.HistoryOptions{
		Order: query.Get("order"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		opts.Limit = limit
	}

	history, err := s.service.GetQueryHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	from, err := queryPosition(r, "from")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Moves(r.Context(), from)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	from, err := queryPosition(r, "from")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	to, err := queryPosition(r, "to")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Distance(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleIndex describes the API; the stdio MCP mode also checks it to
// detect a running server
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":       "knight-path",
		"board_size": knight.BoardSize,
		"endpoints": []string{
			"POST /api/sessions",
			"GET /api/sessions",
			"GET /api/sessions/{id}",
			"DELETE /api/sessions/{id}",
			"GET /api/sessions/{id}/moves",
			"POST /api/sessions/{id}/distance",
			"GET /api/sessions/{id}/history",
			"GET /api/moves?from=x,y",
			"GET /api/distance?from=x,y&to=x,y",
			"GET /ws?session=<id>",
		},
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	if s.hub == nil {
		http.Error(w, "WebSocket hub not available", http.StatusServiceUnavailable)
		return
	}

	// Subscribe under the canonical ID so broadcasts match regardless of case
	s.hub.ServeWS(w, r, session.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
