package game

import (
	"math/rand"
	"testing"
)

func TestEncodeStateDeterministic(t *testing.T) {
	state := NewGame()
	if EncodeState(state.Pieces, Bottom) != EncodeState(state.Pieces, Bottom) {
		t.Fatalf("equal states produced different keys")
	}
}

func TestEncodeStateSideToMove(t *testing.T) {
	state := NewGame()
	if EncodeState(state.Pieces, Bottom) == EncodeState(state.Pieces, Top) {
		t.Fatalf("side to move not reflected in the key")
	}
}

func TestEncodeStatePromotionBits(t *testing.T) {
	state := NewGame()
	plain := EncodeState(state.Pieces, Bottom)

	promoted := state.Pieces
	promoted[BottomChick].Kind = Hen
	if EncodeState(promoted, Bottom) == plain {
		t.Fatalf("Bottom chick promotion not reflected in the key")
	}

	promoted = state.Pieces
	promoted[TopChick].Kind = Hen
	if EncodeState(promoted, Bottom) == plain {
		t.Fatalf("Top chick promotion not reflected in the key")
	}
}

func TestEncodeStateHandVersusBoard(t *testing.T) {
	state := NewGame()
	inHand := state.Pieces
	inHand[TopChick].Square = Captured
	inHand[TopChick].Owner = Bottom
	if EncodeState(inHand, Bottom) == EncodeState(state.Pieces, Bottom) {
		t.Fatalf("capture not reflected in the key")
	}
}

// Walk random games and confirm the key never aliases two different states.
func TestEncodeStateNoCollisionsInReachablePlay(t *testing.T) {
	type stateID struct {
		pieces Position
		turn   Player
	}
	rng := rand.New(rand.NewSource(11))
	seen := make(map[uint64]stateID)

	for round := 0; round < 200; round++ {
		state := NewGame()
		for step := 0; step < 60; step++ {
			key := EncodeState(state.Pieces, state.Turn)
			id := stateID{state.Pieces, state.Turn}
			if prev, ok := seen[key]; ok {
				if prev != id {
					t.Fatalf("key %x aliases %+v and %+v", key, prev, id)
				}
			} else {
				seen[key] = id
			}

			if _, over := GameOver(state.Pieces); over {
				break
			}
			moves := PossibleMoves(state.Pieces, state.Turn)
			if len(moves) == 0 {
				break
			}
			state.Pieces = ApplyMove(state.Pieces, moves[rng.Intn(len(moves))])
			state.Turn = state.Turn.Opponent()
		}
	}
}
