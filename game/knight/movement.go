package knight

// PossibleMoves returns every square a knight on position can jump to
// without leaving the board, in Offsets order
func PossibleMoves(board Board, position Position) []Position {
	moves := make([]Position, 0, MaxMoves)
	for _, offset := range Offsets {
		candidate := position.Add(offset)
		if board.Contains(candidate) {
			moves = append(moves, candidate)
		}
	}
	return moves
}
