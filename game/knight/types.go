package knight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// BoardSize is the edge length of the standard chessboard.
	BoardSize = 8

	// MaxMoves is the number of knight move offsets.
	MaxMoves = 8

	// MaxBoardSize bounds Board.Size so a full search stays in memory.
	MaxBoardSize = 1 << 10
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrUnreachable     = errors.New("target unreachable")
	ErrInvalidBoard    = errors.New("invalid board size")
)

// Position represents x,y coordinates of a square
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position as "x,y", the form ParsePosition accepts
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Add returns the position shifted by the given offset
func (p Position) Add(o Offset) Position {
	return Position{X: p.X + o.DX, Y: p.Y + o.DY}
}

// ParsePosition parses an "x,y" pair such as "3,4"
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("%w: %q is not in x,y form", ErrInvalidPosition, s)
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad x in %q", ErrInvalidPosition, s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad y in %q", ErrInvalidPosition, s)
	}

	return Position{X: x, Y: y}, nil
}

// Offset is a single (dx, dy) knight jump
type Offset struct {
	DX int
	DY int
}

// Offsets lists the knight jumps in enumeration order. The order fixes the
// order of PossibleMoves and therefore BFS tie-breaking.
var Offsets = [MaxMoves]Offset{
	{1, 2},
	{2, 1},
	{2, -1},
	{1, -2},
	{-1, -2},
	{-2, -1},
	{-2, 1},
	{-1, 2},
}

// Board describes a square board of Size x Size squares indexed from zero
type Board struct {
	Size int `json:"size"`
}

// StandardBoard is the 8x8 chessboard
var StandardBoard = Board{Size: BoardSize}

// Check returns ErrInvalidBoard unless 1 <= Size <= MaxBoardSize
func (b Board) Check() error {
	if b.Size < 1 || b.Size > MaxBoardSize {
		return fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidBoard, b.Size, MaxBoardSize)
	}
	return nil
}

// Contains reports whether p lies on the board
func (b Board) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.Size && p.Y >= 0 && p.Y < b.Size
}

// Squares returns the number of squares on the board
func (b Board) Squares() int {
	return b.Size * b.Size
}

// Index packs an on-board position into a dense key in [0, Squares())
func (b Board) Index(p Position) int {
	return p.X*b.Size + p.Y
}

// Validate returns ErrInvalidPosition wrapped with the offending square
// when p is off the board
func (b Board) Validate(p Position) error {
	if !b.Contains(p) {
		return fmt.Errorf("%w: (%d,%d) is outside 0..%d", ErrInvalidPosition, p.X, p.Y, b.Size-1)
	}
	return nil
}
