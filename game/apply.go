package game

// ApplyMove returns the successor position for a legal move. The input is
// never modified. A captured token flips to the mover's hand and a hen
// demotes back to a chick on capture; a chick ending a board move in the far
// zone always promotes. Drops neither capture nor promote, since their
// destination square is required to be empty.
func ApplyMove(pos Position, mv Move) Position {
	next := pos
	mover := pos[mv.From]

	for j := range next {
		if next[j].Square == mv.To {
			next[j].Square = Captured
			next[j].Owner = mover.Owner
			if next[j].Kind == Hen {
				next[j].Kind = Chick
			}
			break
		}
	}

	next[mv.From].Square = mv.To
	if mover.Kind == Chick && mover.OnBoard() && inFarZone(mv.To, mover.Owner) {
		next[mv.From].Kind = Hen
	}
	return next
}
