package game

// moveOffsets holds each kind's movement deltas as (dx, dy) pairs authored
// from Bottom's perspective; Top mirrors them by negating both components.
var moveOffsets = [5][][2]int{
	Chick:    {{0, 1}},
	Elephant: {{1, 1}, {-1, 1}, {1, -1}, {-1, -1}},
	Giraffe:  {{0, 1}, {1, 0}, {0, -1}, {-1, 0}},
	Lion:     {{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}},
	Hen:      {{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {1, 1}, {-1, 1}},
}

// occupancy marks each square with 0 for empty or ownerMark of the piece
// standing on it.
func occupancy(pos Position) [NumSquares]int8 {
	var board [NumSquares]int8
	for _, p := range pos {
		if p.OnBoard() {
			board[p.Square] = ownerMark(p.Owner)
		}
	}
	return board
}

func ownerMark(p Player) int8 {
	return int8(p) + 1
}

// canDropFrom reports whether the hand token in slot i is the canonical one
// for its kind. When both tokens of a kind sit in the same hand only one of
// them emits drop moves, since the two drops would be indistinguishable.
func canDropFrom(pos Position, i int) bool {
	if i < 4 {
		return true
	}
	pair := pos[PairedIndex(i)]
	return pair.Owner != pos[i].Owner || pair.OnBoard()
}

// PossibleMoves enumerates every legal move for turn: drops of canonical hand
// tokens onto any empty square, and board moves along the kind's offsets onto
// any in-bounds square not held by the mover's own side. Capturing the
// opposing lion is emitted like any other capture; the search layer is the
// one that recognizes the game as already decided.
func PossibleMoves(pos Position, turn Player) []Move {
	board := occupancy(pos)
	mark := ownerMark(turn)

	var moves []Move
	for i, piece := range pos {
		if piece.Owner != turn {
			continue
		}
		if !piece.OnBoard() {
			if !canDropFrom(pos, i) {
				continue
			}
			for sq := 0; sq < NumSquares; sq++ {
				if board[sq] == 0 {
					moves = append(moves, Move{From: i, To: sq})
				}
			}
			continue
		}

		x := piece.Square % BoardCols
		y := piece.Square / BoardCols
		for _, d := range moveOffsets[piece.Kind] {
			dx, dy := d[0], d[1]
			if turn == Top {
				dx, dy = -dx, -dy
			}
			x2, y2 := x+dx, y+dy
			if x2 < 0 || x2 >= BoardCols || y2 < 0 || y2 >= BoardRows {
				continue
			}
			to := SquareIndex(x2, y2)
			if board[to] != mark {
				moves = append(moves, Move{From: i, To: to})
			}
		}
	}
	return moves
}

// PossibleMovesFrom filters PossibleMoves down to the moves of a single slot.
func PossibleMovesFrom(pos Position, turn Player, from int) []Move {
	var moves []Move
	for _, m := range PossibleMoves(pos, turn) {
		if m.From == from {
			moves = append(moves, m)
		}
	}
	return moves
}
