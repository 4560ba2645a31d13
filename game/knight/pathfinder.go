package knight

import "fmt"

// Pathfinder answers knight distance queries from a fixed start square.
// It is immutable once built, so queries may run concurrently.
type Pathfinder struct {
	board    Board
	position Position
}

// NewPathfinder creates a pathfinder on the standard board
func NewPathfinder(start Position) (*Pathfinder, error) {
	return NewPathfinderOnBoard(StandardBoard, start)
}

// NewPathfinderOnBoard creates a pathfinder on the given board
func NewPathfinderOnBoard(board Board, start Position) (*Pathfinder, error) {
	if err := board.Check(); err != nil {
		return nil, err
	}
	if err := board.Validate(start); err != nil {
		return nil, err
	}
	return &Pathfinder{board: board, position: start}, nil
}

// Position returns the start square
func (p *Pathfinder) Position() Position {
	return p.position
}

// Board returns the board the pathfinder searches
func (p *Pathfinder) Board() Board {
	return p.board
}

// PossibleMoves returns the legal jumps from the start square
func (p *Pathfinder) PossibleMoves() []Position {
	return PossibleMoves(p.board, p.position)
}

// ShortestNumberOfMoves returns the minimum number of knight moves from the
// start square to target
func (p *Pathfinder) ShortestNumberOfMoves(target Position) (int, error) {
	if err := p.board.Validate(target); err != nil {
		return 0, err
	}
	if err := p.board.Validate(p.position); err != nil {
		return 0, err
	}

	moves, found := p.search(target)
	if !found {
		return 0, fmt.Errorf("%w: %s from %s", ErrUnreachable, target, p.position)
	}
	return moves, nil
}

// Distances runs the search to exhaustion and returns the distance of
// every reachable square
func (p *Pathfinder) Distances() map[Position]int {
	distances := make(map[Position]int, p.board.Squares())
	p.walk(func(pos Position, moves int) bool {
		distances[pos] = moves
		return true
	})
	return distances
}

// search returns the distance to target, or (0, false) once the frontier
// is exhausted without reaching it
func (p *Pathfinder) search(target Position) (int, bool) {
	result, found := 0, false
	p.walk(func(pos Position, moves int) bool {
		if pos == target {
			result, found = moves, true
			return false
		}
		return true
	})
	return result, found
}

// walk pops squares in non-decreasing distance order and hands each to
// visit. Returning false from visit stops the walk before the square's
// neighbours are expanded.
func (p *Pathfinder) walk(visit func(pos Position, moves int) bool) {
	// -1 marks squares not yet discovered; keys are Board.Index values.
	distance := make([]int, p.board.Squares())
	for i := range distance {
		distance[i] = -1
	}

	start := p.position
	distance[p.board.Index(start)] = 0
	queue := make([]Position, 0, p.board.Squares())
	queue = append(queue, start)

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		currentMoves := distance[p.board.Index(current)]

		if !visit(current, currentMoves) {
			return
		}

		for _, next := range PossibleMoves(p.board, current) {
			key := p.board.Index(next)
			if distance[key] >= 0 {
				continue
			}
			distance[key] = currentMoves + 1
			queue = append(queue, next)
		}
	}
}
