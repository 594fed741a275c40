package game

import (
	"errors"
	"math"
	"math/rand"
)

const (
	defaultMCTSIterations  = 800
	defaultMCTSExploration = 1.2
	mctsRolloutDepth       = 60
)

// MCTSEngine runs plain UCT: random playouts scored by who wins (lion
// capture or try), falling back to the static evaluation when a rollout
// hits its length cap. It is the sparring partner for the alpha-beta
// engine rather than the primary player.
type MCTSEngine struct {
	iterations  int
	exploration float64
	rng         *rand.Rand
}

func NewMCTSEngine(iterations int, seed int64) *MCTSEngine {
	if iterations <= 0 {
		iterations = defaultMCTSIterations
	}
	return &MCTSEngine{
		iterations:  iterations,
		exploration: defaultMCTSExploration,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (e *MCTSEngine) NextMove(state GameState, played []Position) (Move, error) {
	legal := PossibleMoves(state.Pieces, state.Turn)
	if len(legal) == 0 {
		return Move{}, errors.New("no legal moves to play")
	}
	root := newMCTSNode(state, nil, nil)
	rootPlayer := state.Turn
	for i := 0; i < e.iterations; i++ {
		node := root
		for len(node.untried) == 0 && len(node.children) > 0 {
			node = node.selectChild(e.exploration)
		}
		if len(node.untried) > 0 {
			node = node.expand(e.rng)
		}
		winner, decided := e.rollout(node.state, rootPlayer)
		node.backpropagate(winner, rootPlayer, decided)
	}
	best := root.bestChildByVisits()
	if best == nil || best.move == nil {
		return Move{}, errors.New("failed to choose move")
	}
	return *best.move, nil
}

type mctsNode struct {
	state    GameState
	move     *Move
	parent   *mctsNode
	children []*mctsNode
	untried  []Move
	visits   int
	wins     float64
}

func newMCTSNode(state GameState, move *Move, parent *mctsNode) *mctsNode {
	var untried []Move
	if _, over := GameOver(state.Pieces); !over {
		untried = PossibleMoves(state.Pieces, state.Turn)
	}
	return &mctsNode{
		state:   state,
		move:    move,
		parent:  parent,
		untried: untried,
	}
}

func (n *mctsNode) selectChild(exploration float64) *mctsNode {
	parentVisits := math.Max(1, float64(n.visits))
	bestScore := math.Inf(-1)
	var chosen *mctsNode
	for _, child := range n.children {
		if child.visits == 0 {
			return child
		}
		exploit := child.wins / float64(child.visits)
		explore := exploration * math.Sqrt(math.Log(parentVisits)/float64(child.visits))
		if score := exploit + explore; score > bestScore {
			bestScore = score
			chosen = child
		}
	}
	return chosen
}

func (n *mctsNode) expand(rng *rand.Rand) *mctsNode {
	if len(n.untried) == 0 {
		return n
	}
	idx := rng.Intn(len(n.untried))
	mv := n.untried[idx]
	n.untried[idx] = n.untried[len(n.untried)-1]
	n.untried = n.untried[:len(n.untried)-1]

	childState := GameState{
		Pieces: ApplyMove(n.state.Pieces, mv),
		Turn:   n.state.Turn.Opponent(),
	}
	mvCopy := mv
	child := newMCTSNode(childState, &mvCopy, n)
	n.children = append(n.children, child)
	return child
}

func (n *mctsNode) bestChildByVisits() *mctsNode {
	var best *mctsNode
	bestVisits := -1
	for _, child := range n.children {
		if child.visits > bestVisits {
			best = child
			bestVisits = child.visits
		}
	}
	return best
}

func (n *mctsNode) backpropagate(winner Player, root Player, decided bool) {
	reward := 0.5
	if decided {
		if winner == root {
			reward = 1
		} else {
			reward = 0
		}
	}
	for node := n; node != nil; node = node.parent {
		node.visits++
		node.wins += reward
	}
}

func (e *MCTSEngine) rollout(state GameState, root Player) (Player, bool) {
	sim := state
	for step := 0; step < mctsRolloutDepth; step++ {
		if winner, over := GameOver(sim.Pieces); over {
			return winner, true
		}
		moves := PossibleMoves(sim.Pieces, sim.Turn)
		if len(moves) == 0 {
			return root, false
		}
		mv := moves[e.rng.Intn(len(moves))]
		sim.Pieces = ApplyMove(sim.Pieces, mv)
		sim.Turn = sim.Turn.Opponent()
	}

	score := Evaluate(sim.Pieces)
	if root == Top {
		score = -score
	}
	switch {
	case score > 0:
		return root, true
	case score < 0:
		return root.Opponent(), true
	default:
		return root, false
	}
}
