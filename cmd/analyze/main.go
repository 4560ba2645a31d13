// Command analyze prints a knight distance table for one or more start
// squares. For each start it shows the board with the minimum number of
// moves to every square, the eccentricity (the largest distance), and how
// many squares sit at each distance. Squares the knight cannot reach are
// marked with "-", which only happens on boards smaller than 4x4.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/knight-path/game/knight"
)

// Analysis summarizes the distances from one start square.
type Analysis struct {
	Board        knight.Board
	Start        knight.Position
	Distances    map[knight.Position]int
	Eccentricity int
	Histogram    []int // Histogram[d] is the number of squares at distance d
	Unreachable  int
}

func main() {
	app := &cli.Command{
		Name:      "analyze",
		Usage:     "Print knight distance tables",
		ArgsUsage: "[x,y ...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "size",
				Value: knight.BoardSize,
				Usage: "Board edge length",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			starts := cmd.Args().Slice()
			if len(starts) == 0 {
				starts = []string{"0,0"}
			}
			return run(cmd.Root().Writer, knight.Board{Size: cmd.Int("size")}, starts)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, board knight.Board, starts []string) error {
	if err := board.Check(); err != nil {
		return err
	}

	for _, s := range starts {
		start, err := knight.ParsePosition(s)
		if err != nil {
			return err
		}

		a, err := analyze(board, start)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n=== Knight from %s on %dx%d ===\n", start, board.Size, board.Size)
		render(w, a)
	}
	return nil
}

func analyze(board knight.Board, start knight.Position) (*Analysis, error) {
	pf, err := knight.NewPathfinderOnBoard(board, start)
	if err != nil {
		return nil, err
	}

	distances := pf.Distances()
	a := &Analysis{
		Board:       board,
		Start:       start,
		Distances:   distances,
		Unreachable: board.Squares() - len(distances),
	}

	for _, d := range distances {
		if d > a.Eccentricity {
			a.Eccentricity = d
		}
	}

	a.Histogram = make([]int, a.Eccentricity+1)
	for _, d := range distances {
		a.Histogram[d]++
	}

	return a, nil
}

// render prints the table with the highest row first so (0,0) is bottom-left
func render(w io.Writer, a *Analysis) {
	size := a.Board.Size
	for y := size - 1; y >= 0; y-- {
		cells := make([]string, size)
		for x := 0; x < size; x++ {
			if d, ok := a.Distances[knight.Position{X: x, Y: y}]; ok {
				cells[x] = fmt.Sprintf("%2d", d)
			} else {
				cells[x] = " -"
			}
		}
		fmt.Fprintf(w, "%2d |%s\n", y, strings.Join(cells, " "))
	}

	axis := make([]string, size)
	for x := range axis {
		axis[x] = fmt.Sprintf("%2d", x)
	}
	fmt.Fprintf(w, "   +%s\n", strings.Repeat("-", 3*size-1))
	fmt.Fprintf(w, "    %s\n\n", strings.Join(axis, " "))

	fmt.Fprintf(w, "Eccentricity: %d\n", a.Eccentricity)
	for d, n := range a.Histogram {
		fmt.Fprintf(w, "  %d moves: %d squares\n", d, n)
	}
	if a.Unreachable > 0 {
		fmt.Fprintf(w, "Unreachable: %d squares\n", a.Unreachable)
	}
}
