package game

var pieceValues = [5]int{
	Chick:    10,
	Elephant: 30,
	Giraffe:  50,
	Lion:     1000,
	Hen:      70,
}

// Evaluate scores a position from Bottom's point of view: positive favors
// Bottom, negative favors Top. Material counts all eight tokens, so hand
// pieces score for the player holding them. Mobility adds one point per
// reachable destination square of every on-board piece, mirrored by owner
// the same way move generation mirrors offsets.
func Evaluate(pos Position) int {
	board := occupancy(pos)

	score := 0
	for _, p := range pos {
		value := pieceValues[p.Kind]
		if p.Owner == Top {
			value = -value
		}
		score += value
	}

	for _, p := range pos {
		if !p.OnBoard() {
			continue
		}
		mark := ownerMark(p.Owner)
		delta := 1
		if p.Owner == Top {
			delta = -1
		}
		x := p.Square % BoardCols
		y := p.Square / BoardCols
		for _, d := range moveOffsets[p.Kind] {
			dx, dy := d[0], d[1]
			if p.Owner == Top {
				dx, dy = -dx, -dy
			}
			x2, y2 := x+dx, y+dy
			if x2 < 0 || x2 >= BoardCols || y2 < 0 || y2 >= BoardRows {
				continue
			}
			if board[SquareIndex(x2, y2)] != mark {
				score += delta
			}
		}
	}
	return score
}
