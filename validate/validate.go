// Command validate audits persisted knight session files. For every *.json
// file in the sessions directory it checks:
//   - JSON structure and that the id matches the file name
//   - The board size and that the knight's start square is on the board
//   - Query numbering runs 1..n without gaps
//   - Each recorded answer, by recomputing it: distance queries against a
//     fresh breadth-first search, move queries against the legal jumps
//
// It exits with non-zero status if any file is invalid.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
	"github.com/wricardo/knight-path/game/session"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateSession loads and validates a single session file.
func validateSession(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var sess session.PersistedSessionData
	if err := json.Unmarshal(data, &sess); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if sess.ID == "" {
		result.fail("Missing session id")
	} else if want := strings.TrimSuffix(result.File, ".json"); sess.ID != want {
		result.fail("Session id %q does not match file name %q", sess.ID, want)
	}

	// Zero means the standard board
	board := knight.StandardBoard
	if sess.BoardSize != 0 {
		board = knight.Board{Size: sess.BoardSize}
	}
	if err := board.Check(); err != nil {
		result.fail("board_size: %v", err)
		return result
	}

	if err := board.Validate(sess.Start); err != nil {
		result.fail("Start square: %v", err)
		return result
	}

	if !sess.CreatedAt.IsZero() && sess.LastAccessedAt.Before(sess.CreatedAt) {
		result.fail("last_accessed_at (%s) is before created_at (%s)", sess.LastAccessedAt, sess.CreatedAt)
	}

	queryResult := validateQueries(board, sess.Start, sess.Queries)
	result.Errors = append(result.Errors, queryResult.Errors...)
	if !queryResult.Valid {
		result.Valid = false
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Session: %s", sess.ID))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", board.Size, board.Size))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Knight: %s", sess.Start))
	}

	return result
}

// validateQueries recomputes every recorded answer. Distances all come from
// a single search from start since every distance query in a session is
// answered from the start square.
func validateQueries(board knight.Board, start knight.Position, queries []service.QueryRecord) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	pf, err := knight.NewPathfinderOnBoard(board, start)
	if err != nil {
		result.fail("Cannot rebuild pathfinder: %v", err)
		return result
	}
	distances := pf.Distances()

	distanceCount, movesCount := 0, 0
	for i, q := range queries {
		if q.QueryNumber != i+1 {
			result.fail("Query %d: query_number is %d", i+1, q.QueryNumber)
		}

		switch q.Kind {
		case service.QueryDistance:
			distanceCount++
			if q.From != start {
				result.fail("Query %d: distance asked from %s, knight is on %s", i+1, q.From, start)
			}
			if q.To == nil {
				result.fail("Query %d: distance query has no target", i+1)
				continue
			}
			want, ok := distances[*q.To]
			if !ok {
				result.fail("Query %d: target %s is unreachable or off the board", i+1, *q.To)
				continue
			}
			if q.Moves != want {
				result.fail("Query %d: recorded %d moves to %s, expected %d", i+1, q.Moves, *q.To, want)
			}

		case service.QueryMoves:
			movesCount++
			if err := board.Validate(q.From); err != nil {
				result.fail("Query %d: %v", i+1, err)
				continue
			}
			want := knight.PossibleMoves(board, q.From)
			if q.Moves != len(want) {
				result.fail("Query %d: recorded %d moves from %s, expected %d", i+1, q.Moves, q.From, len(want))
			}
			if len(q.Possible) > 0 && !reflect.DeepEqual(q.Possible, want) {
				result.fail("Query %d: recorded moves from %s are %v, expected %v", i+1, q.From, q.Possible, want)
			}

		default:
			result.fail("Query %d: unknown kind %q", i+1, q.Kind)
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Queries: %d (%d distance, %d moves) all consistent",
			len(queries), distanceCount, movesCount))
	}

	return result
}

// run validates every session file in dir and reports whether all passed
func run(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding session files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateSession(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, msg := range result.Errors {
				if !strings.HasPrefix(msg, "✓") {
					fmt.Fprintln(w, "  ❌ "+msg)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(files) == 0:
		fmt.Fprintf(w, "No session files in %s\n", dir)
	case allValid:
		fmt.Fprintf(w, "✅ All %d sessions are valid!\n", len(files))
	default:
		fmt.Fprintln(w, "❌ Some sessions have errors")
	}

	return allValid, nil
}

func main() {
	app := &cli.Command{
		Name:  "validate",
		Usage: "Audit persisted knight session files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory containing session files",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := run(cmd.Root().Writer, cmd.String("sessions-dir"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
