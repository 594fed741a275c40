package game

import "errors"

// AlphaBetaEngine performs a depth-limited minimax search with alpha-beta
// pruning. Bottom is the maximizing side, matching Evaluate's sign
// convention. Each NextMove call owns a fresh transposition table that is
// discarded when the call returns.
type AlphaBetaEngine struct {
	Depth int
}

func NewAlphaBetaEngine(depth int) *AlphaBetaEngine {
	return &AlphaBetaEngine{Depth: depth}
}

type boundType int

const (
	boundExact boundType = iota
	boundLower
	boundUpper
)

type ttEntry struct {
	depth int
	score int
	bound boundType
}

type transTable map[uint64]ttEntry

const (
	// winScore is the base of mate scores; the remaining depth is added on
	// top so a win reached closer to the root outranks a deeper one.
	winScore      = 100000
	infiniteScore = 1_000_000_000
)

// sideScore is the terminal score for a game already won by winner, seen
// from a node with the given remaining depth.
func sideScore(winner Player, depth int) int {
	if winner == Bottom {
		return winScore + depth
	}
	return -(winScore + depth)
}

// NextMove picks the best root move for state.Turn. Successors that already
// occurred in played are only considered when every legal move repeats: the
// engine refuses to revisit a known position while any fresh alternative
// exists, whatever the scores say.
func (e *AlphaBetaEngine) NextMove(state GameState, played []Position) (Move, error) {
	if e.Depth < 1 {
		return Move{}, errors.New("search depth must be at least 1")
	}
	moves := PossibleMoves(state.Pieces, state.Turn)
	if len(moves) == 0 {
		return Move{}, errors.New("no legal moves to play")
	}

	type candidate struct {
		move Move
		next Position
	}
	var novel, repeated []candidate
	for _, mv := range moves {
		next := ApplyMove(state.Pieces, mv)
		if positionSeen(next, played) {
			repeated = append(repeated, candidate{mv, next})
		} else {
			novel = append(novel, candidate{mv, next})
		}
	}

	table := make(transTable)
	alpha, beta := -infiniteScore, infiniteScore
	opponent := state.Turn.Opponent()

	var best *Move
	pick := func(cands []candidate) {
		for _, c := range cands {
			score := e.search(table, c.next, opponent, e.Depth-1, alpha, beta)
			if state.Turn == Bottom {
				if score > alpha {
					alpha = score
					mv := c.move
					best = &mv
				}
			} else {
				if score < beta {
					beta = score
					mv := c.move
					best = &mv
				}
			}
		}
	}

	pick(novel)
	if best == nil {
		pick(repeated)
	}
	if best == nil {
		return Move{}, errors.New("failed to find a move")
	}
	return *best, nil
}

func positionSeen(pos Position, played []Position) bool {
	for _, p := range played {
		if p == pos {
			return true
		}
	}
	return false
}

// search returns the minimax value of pos with turn to move, pruning with a
// fail-soft alpha-beta window. Terminal states (a lion captured, or a lion
// already standing in the opposing far zone) are recognized before the depth
// check, so they score as mates at any remaining depth.
func (e *AlphaBetaEngine) search(table transTable, pos Position, turn Player, depth, alpha, beta int) int {
	alphaOrig, betaOrig := alpha, beta

	key := EncodeState(pos, turn)
	if entry, ok := table[key]; ok && entry.depth == depth {
		switch entry.bound {
		case boundExact:
			return entry.score
		case boundLower:
			if entry.score > alpha {
				alpha = entry.score
			}
		case boundUpper:
			if entry.score < beta {
				beta = entry.score
			}
		}
		if alpha >= beta {
			return entry.score
		}
	}

	opponent := turn.Opponent()
	switch {
	case !pos[LionIndex(turn)].OnBoard():
		return sideScore(opponent, depth)
	case !pos[LionIndex(opponent)].OnBoard():
		return sideScore(turn, depth)
	case inFarZone(pos[LionIndex(turn)].Square, turn):
		return sideScore(turn, depth)
	case inFarZone(pos[LionIndex(opponent)].Square, opponent):
		return sideScore(opponent, depth)
	}

	if depth == 0 {
		return Evaluate(pos)
	}

	var best int
	if turn == Bottom {
		best = -infiniteScore
		for _, mv := range PossibleMoves(pos, turn) {
			score := e.search(table, ApplyMove(pos, mv), opponent, depth-1, alpha, beta)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
	} else {
		best = infiniteScore
		for _, mv := range PossibleMoves(pos, turn) {
			score := e.search(table, ApplyMove(pos, mv), opponent, depth-1, alpha, beta)
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
			if alpha >= beta {
				break
			}
		}
	}

	table[key] = ttEntry{
		depth: depth,
		score: best,
		bound: classifyBound(best, alphaOrig, betaOrig),
	}
	return best
}

// classifyBound tags a fail-soft result against the window the node started
// with: a fail-low is an upper bound on the true value, a fail-high a lower
// bound.
func classifyBound(score, alphaOrig, betaOrig int) boundType {
	switch {
	case score <= alphaOrig:
		return boundUpper
	case score >= betaOrig:
		return boundLower
	default:
		return boundExact
	}
}
