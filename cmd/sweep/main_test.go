package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/knight-path/api"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
	"github.com/wricardo/knight-path/game/session"
)

func newAPIServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	manager := session.NewManager()
	server := httptest.NewServer(api.NewServer(service.NewKnightService(manager), nil))
	t.Cleanup(server.Close)
	return server, manager
}

func TestSweep(t *testing.T) {
	server, manager := newAPIServer(t)
	ctx := context.Background()

	s := &sweeper{client: NewClient(server.URL), board: knight.StandardBoard}
	starts := []knight.Position{{X: 0, Y: 0}, {X: 7, Y: 7}, {X: 3, Y: 3}}

	report, err := s.run(ctx, starts)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(report.Sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(report.Sessions))
	}
	if report.Queries != 3*64 {
		t.Errorf("Expected %d queries, got %d", 3*64, report.Queries)
	}
	if len(report.Violations) != 0 {
		t.Errorf("Expected no violations, got %v", report.Violations)
	}
	if d := report.Distances[knight.Position{X: 0, Y: 0}][knight.Position{X: 7, Y: 7}]; d != 6 {
		t.Errorf("Expected 6 moves corner to corner, got %d", d)
	}

	s.cleanup(ctx, report.Sessions)
	if manager.Count() != 0 {
		t.Errorf("Expected sessions to be deleted, %d remain", manager.Count())
	}
}

func TestSweep_DetectsBadAnswers(t *testing.T) {
	// A server that claims every square is three moves away
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Start knight.Position `json:"start"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{ID: "ab12", Start: req.Start})
	})
	mux.HandleFunc("/api/sessions/ab12/distance", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.DistanceResult{Moves: 3})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := &sweeper{client: NewClient(server.URL), board: knight.StandardBoard}
	report, err := s.run(context.Background(), []knight.Position{{X: 0, Y: 0}})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	found := false
	for _, v := range report.Violations {
		if strings.Contains(v, "0,0 -> 0,0 is 3 moves, expected 0") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the start square to be flagged, got %v", report.Violations)
	}
}

func TestClient_Errors(t *testing.T) {
	server, _ := newAPIServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	if _, err := client.CreateSession(ctx, knight.Position{X: 8, Y: 0}); err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Expected 400 for off-board start, got %v", err)
	}
	if _, err := client.Distance(ctx, "zzzz", knight.Position{X: 1, Y: 2}); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 for unknown session, got %v", err)
	}
	if err := client.DeleteSession(ctx, "zzzz"); err == nil {
		t.Error("Expected error deleting unknown session")
	}
}

func TestParseStarts(t *testing.T) {
	starts, err := parseStarts(knight.StandardBoard, nil)
	if err != nil || len(starts) != 3 {
		t.Errorf("Expected 3 default starts, got %v (%v)", starts, err)
	}

	starts, err = parseStarts(knight.StandardBoard, []string{"1,2", "6,5"})
	if err != nil {
		t.Fatal(err)
	}
	if starts[1] != (knight.Position{X: 6, Y: 5}) {
		t.Errorf("Expected 6,5, got %s", starts[1])
	}

	if _, err := parseStarts(knight.StandardBoard, []string{"9,9"}); !errors.Is(err, knight.ErrInvalidPosition) {
		t.Errorf("Expected invalid position for off-board start, got %v", err)
	}
}
