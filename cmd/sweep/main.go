// Command sweep drives a running knight server over its REST API. It opens
// one session per start square, asks for the distance to every square on
// the board, and checks the answers hang together:
//   - d(a,b) equals d(b,a) for every pair of swept starts
//   - the start is 0 moves away and each of its jumps is 1 move away
//   - a single jump never changes the distance by more than one
//
// Sessions are deleted afterwards unless --keep is given.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends body as JSON and decodes a 2xx response into result
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(raw))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, start knight.Position) (*service.SessionInfo, error) {
	var info service.SessionInfo
	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]knight.Position{"start": start}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Distance(ctx context.Context, sessionID string, target knight.Position) (*service.DistanceResult, error) {
	var result service.DistanceResult
	path := fmt.Sprintf("/api/sessions/%s/distance", sessionID)
	if err := c.do(ctx, http.MethodPost, path, map[string]knight.Position{"target": target}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil)
}

// Report collects what a sweep found
type Report struct {
	Sessions   []string
	Queries    int
	Distances  map[knight.Position]map[knight.Position]int
	Violations []string
}

func (r *Report) violate(format string, args ...interface{}) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

type sweeper struct {
	client  *Client
	board   knight.Board
	delay   time.Duration
	verbose bool
}

func (s *sweeper) run(ctx context.Context, starts []knight.Position) (*Report, error) {
	report := &Report{Distances: make(map[knight.Position]map[knight.Position]int)}

	for _, start := range starts {
		info, err := s.client.CreateSession(ctx, start)
		if err != nil {
			return report, fmt.Errorf("create session from %s: %w", start, err)
		}
		report.Sessions = append(report.Sessions, info.ID)
		if s.verbose {
			log.Printf("[%s] sweeping from %s", info.ID, start)
		}

		row := make(map[knight.Position]int, s.board.Squares())
		for y := 0; y < s.board.Size; y++ {
			for x := 0; x < s.board.Size; x++ {
				target := knight.Position{X: x, Y: y}
				result, err := s.client.Distance(ctx, info.ID, target)
				if err != nil {
					return report, fmt.Errorf("distance %s -> %s: %w", start, target, err)
				}
				report.Queries++
				row[target] = result.Moves

				if s.delay > 0 {
					time.Sleep(s.delay)
				}
			}
		}
		report.Distances[start] = row
	}

	s.check(report)
	return report, nil
}

func (s *sweeper) check(report *Report) {
	for start, row := range report.Distances {
		if row[start] != 0 {
			report.violate("%s -> %s is %d moves, expected 0", start, start, row[start])
		}
		for _, next := range knight.PossibleMoves(s.board, start) {
			if row[next] != 1 {
				report.violate("%s -> %s is %d moves, expected 1", start, next, row[next])
			}
		}

		for from, d := range row {
			for _, next := range knight.PossibleMoves(s.board, from) {
				if diff := row[next] - d; diff > 1 || diff < -1 {
					report.violate("from %s: %s is %d moves but its jump %s is %d", start, from, d, next, row[next])
				}
			}
		}

		for other, otherRow := range report.Distances {
			if row[other] != otherRow[start] {
				report.violate("%s -> %s is %d moves but %s -> %s is %d", start, other, row[other], other, start, otherRow[start])
			}
		}
	}
}

func (s *sweeper) cleanup(ctx context.Context, sessions []string) {
	for _, id := range sessions {
		if err := s.client.DeleteSession(ctx, id); err != nil {
			log.Printf("Warning: failed to delete session %s: %v", id, err)
		}
	}
}

func parseStarts(board knight.Board, args []string) ([]knight.Position, error) {
	if len(args) == 0 {
		return []knight.Position{{X: 0, Y: 0}, {X: 7, Y: 7}, {X: 3, Y: 3}}, nil
	}
	starts := make([]knight.Position, 0, len(args))
	for _, arg := range args {
		p, err := knight.ParsePosition(arg)
		if err != nil {
			return nil, err
		}
		if err := board.Validate(p); err != nil {
			return nil, err
		}
		starts = append(starts, p)
	}
	return starts, nil
}

func main() {
	app := &cli.Command{
		Name:      "sweep",
		Usage:     "Cross-check a running knight server",
		ArgsUsage: "[x,y ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://localhost:8080",
				Usage: "Knight server URL",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Keep the sessions after sweeping",
			},
			&cli.IntFlag{
				Name:  "delay",
				Usage: "Delay between queries in milliseconds",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose output",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			starts, err := parseStarts(knight.StandardBoard, cmd.Args().Slice())
			if err != nil {
				return err
			}

			s := &sweeper{
				client:  NewClient(cmd.String("url")),
				board:   knight.StandardBoard,
				delay:   time.Duration(cmd.Int("delay")) * time.Millisecond,
				verbose: cmd.Bool("verbose"),
			}

			log.Printf("Sweeping %d start squares against %s", len(starts), cmd.String("url"))
			report, err := s.run(ctx, starts)
			if !cmd.Bool("keep") {
				defer s.cleanup(context.Background(), report.Sessions)
			}
			if err != nil {
				return err
			}

			log.Printf("%d sessions, %d queries, %d violations", len(report.Sessions), report.Queries, len(report.Violations))
			for _, v := range report.Violations {
				log.Printf("  ❌ %s", v)
			}
			if len(report.Violations) > 0 {
				return fmt.Errorf("%d inconsistent answers", len(report.Violations))
			}
			log.Printf("✅ All answers consistent")
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
