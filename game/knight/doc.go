// Package knight computes knight distances on a chessboard.
//
// The package is pure: it has no I/O and no shared state. A Pathfinder is
// anchored at a start square and answers shortest-distance queries with a
// breadth-first search over the implicit graph of legal knight moves.
//
// Core Types:
//
// Position is an (x, y) square. Board carries the bounds every check goes
// through; StandardBoard is the 8x8 board. Pathfinder holds the start square.
//
// Usage:
//
//	pf, err := knight.NewPathfinder(knight.Position{X: 0, Y: 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moves, err := pf.ShortestNumberOfMoves(knight.Position{X: 7, Y: 7})
//	// moves == 6
//
// Errors:
//
// Squares outside the board fail with ErrInvalidPosition. A search that
// exhausts its frontier without reaching the target fails with
// ErrUnreachable; on the standard board every square is reachable, so this
// only happens on very small boards.
package knight
