package game

import (
	"math/rand"
	"testing"
)

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	state := NewGame()
	before := state.Pieces
	ApplyMove(state.Pieces, Move{From: BottomChick, To: SquareIndex(1, 2)})
	if state.Pieces != before {
		t.Fatalf("ApplyMove mutated its input")
	}
}

func TestCaptureFlipsOwnership(t *testing.T) {
	state := NewGame()
	next := ApplyMove(state.Pieces, Move{From: BottomChick, To: SquareIndex(1, 2)})

	captured := next[TopChick]
	if captured.OnBoard() {
		t.Fatalf("captured chick still on board: %+v", captured)
	}
	if captured.Owner != Bottom {
		t.Fatalf("captured chick should join Bottom's hand, got owner %v", captured.Owner)
	}
	if next[BottomChick].Square != SquareIndex(1, 2) {
		t.Fatalf("mover did not land on target square")
	}
}

func TestPromotionIsMandatory(t *testing.T) {
	state := NewGame()
	state.Pieces[BottomChick].Square = SquareIndex(0, 2)

	next := ApplyMove(state.Pieces, Move{From: BottomChick, To: SquareIndex(0, 3)})
	if next[BottomChick].Kind != Hen {
		t.Fatalf("chick entering the far zone must promote, got %v", next[BottomChick].Kind)
	}
}

func TestTopPromotionZone(t *testing.T) {
	state := NewGame()
	state.Pieces[TopChick].Square = SquareIndex(0, 1)
	state.Pieces[2].Square = Captured // clear a1
	state.Pieces[2].Owner = Top

	next := ApplyMove(state.Pieces, Move{From: TopChick, To: SquareIndex(0, 0)})
	if next[TopChick].Kind != Hen {
		t.Fatalf("Top chick entering Bottom's home band must promote, got %v", next[TopChick].Kind)
	}
}

func TestDropNeverPromotes(t *testing.T) {
	state := NewGame()
	state.Pieces[TopChick].Square = Captured
	state.Pieces[TopChick].Owner = Bottom
	state.Pieces[7].Square = Captured // free a4
	state.Pieces[7].Owner = Bottom

	next := ApplyMove(state.Pieces, Move{From: TopChick, To: SquareIndex(0, 3)})
	if next[TopChick].Kind != Chick {
		t.Fatalf("dropped chick must stay a chick, got %v", next[TopChick].Kind)
	}
	if next[TopChick].Square != SquareIndex(0, 3) {
		t.Fatalf("drop did not place the piece")
	}
}

// Capturing a hen must put a chick in the capturer's hand, and the cycle
// drop -> promote -> get captured must demote again.
func TestHenDemotionRoundTrip(t *testing.T) {
	state := NewGame()
	state.Pieces[TopChick].Kind = Hen
	state.Pieces[TopChick].Square = SquareIndex(2, 1)

	next := ApplyMove(state.Pieces, Move{From: 3, To: SquareIndex(2, 1)}) // giraffe takes hen
	if next[TopChick].Kind != Chick {
		t.Fatalf("captured hen must demote to chick, got %v", next[TopChick].Kind)
	}
	if next[TopChick].Owner != Bottom || next[TopChick].OnBoard() {
		t.Fatalf("captured hen should sit in Bottom's hand: %+v", next[TopChick])
	}

	// Drop it back, walk it into the far zone, then let the Top lion
	// recapture.
	next = ApplyMove(next, Move{From: TopChick, To: SquareIndex(0, 2)})
	if next[TopChick].Kind != Chick {
		t.Fatalf("drop promoted a chick")
	}
	next = ApplyMove(next, Move{From: TopChick, To: SquareIndex(0, 3)})
	if next[TopChick].Kind != Hen {
		t.Fatalf("advance into the far zone must promote")
	}
	next = ApplyMove(next, Move{From: TopLion, To: SquareIndex(0, 3)})
	if next[TopChick].Kind != Chick || next[TopChick].Owner != Top {
		t.Fatalf("recaptured hen must demote into Top's hand: %+v", next[TopChick])
	}
}

// Random playouts must preserve the structural invariants: eight tokens,
// at most one per square, fixed kinds outside the chick slots, and no hen
// ever sitting in a hand.
func TestRandomPlayoutInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fixedKinds := map[int]PieceKind{1: Lion, 2: Elephant, 3: Giraffe, 5: Lion, 6: Elephant, 7: Giraffe}

	for round := 0; round < 100; round++ {
		state := NewGame()
		for step := 0; step < 80; step++ {
			if _, over := GameOver(state.Pieces); over {
				break
			}
			moves := PossibleMoves(state.Pieces, state.Turn)
			if len(moves) == 0 {
				break
			}
			state.Pieces = ApplyMove(state.Pieces, moves[rng.Intn(len(moves))])
			state.Turn = state.Turn.Opponent()

			var squares [NumSquares]int
			for i, p := range state.Pieces {
				if want, ok := fixedKinds[i]; ok && p.Kind != want {
					t.Fatalf("slot %d changed kind to %v", i, p.Kind)
				}
				if (i == BottomChick || i == TopChick) && p.Kind != Chick && p.Kind != Hen {
					t.Fatalf("chick slot %d holds %v", i, p.Kind)
				}
				if !p.OnBoard() {
					if p.Kind == Hen {
						t.Fatalf("hen in hand at slot %d", i)
					}
					continue
				}
				squares[p.Square]++
				if squares[p.Square] > 1 {
					t.Fatalf("square %d occupied twice", p.Square)
				}
			}
		}
	}
}
