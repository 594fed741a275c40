package game

import (
	"errors"
	"fmt"
	"strings"
)

const (
	BoardRows  = 4
	BoardCols  = 3
	NumSquares = BoardRows * BoardCols

	// Captured is the Square value of a piece held in hand.
	Captured = -1
)

type Player int

const (
	Bottom Player = iota
	Top
)

func (p Player) Opponent() Player {
	if p == Bottom {
		return Top
	}
	return Bottom
}

func (p Player) Label() string {
	if p == Bottom {
		return "Bottom (moves up)"
	}
	return "Top (moves down)"
}

type PieceKind int

const (
	Chick PieceKind = iota
	Elephant
	Giraffe
	Lion
	Hen
)

type Piece struct {
	Kind   PieceKind
	Square int
	Owner  Player
}

func (p Piece) OnBoard() bool {
	return p.Square >= 0
}

// Position is the full game state minus the side to move: always exactly
// eight tokens, paired by kind across the two halves of the array. Captured
// tokens stay in the array with Square set to Captured and Owner set to the
// player holding them in hand.
type Position [8]Piece

// Slot layout. Slots 0..3 are the tokens that start the game with Bottom,
// slots 4..7 the same kinds for Top. The kind of a slot never changes except
// for the chick slots toggling between Chick and Hen.
const (
	BottomChick = 0
	BottomLion  = 1
	TopChick    = 4
	TopLion     = 5
)

// PairedIndex maps a slot to the slot holding the other token of the same
// kind. The drop deduplication in PossibleMoves relies on this pairing.
func PairedIndex(i int) int {
	if i < 4 {
		return i + 4
	}
	return i - 4
}

func LionIndex(p Player) int {
	if p == Bottom {
		return BottomLion
	}
	return TopLion
}

// Move identifies an action by the slot of the moving token and the target
// square. When the token at From is in hand the move is a drop.
type Move struct {
	From int
	To   int
}

func (m Move) IsDrop(pos Position) bool {
	return !pos[m.From].OnBoard()
}

type GameState struct {
	Pieces Position
	Turn   Player
}

// Engine defines the contract for thinking components so they can be swapped
// easily. The played list carries every position that already occurred in the
// current game so an engine can steer away from repetitions.
type Engine interface {
	NextMove(state GameState, played []Position) (Move, error)
}

// SquareIndex converts (col, row) to the 0..11 board index. Row 0 is Bottom's
// home rank.
func SquareIndex(col, row int) int {
	return BoardCols*row + col
}

func NewGame() GameState {
	return GameState{
		Pieces: Position{
			BottomChick: {Kind: Chick, Square: SquareIndex(1, 1), Owner: Bottom},
			BottomLion:  {Kind: Lion, Square: SquareIndex(1, 0), Owner: Bottom},
			2:           {Kind: Elephant, Square: SquareIndex(0, 0), Owner: Bottom},
			3:           {Kind: Giraffe, Square: SquareIndex(2, 0), Owner: Bottom},
			TopChick:    {Kind: Chick, Square: SquareIndex(1, 2), Owner: Top},
			TopLion:     {Kind: Lion, Square: SquareIndex(1, 3), Owner: Top},
			6:           {Kind: Elephant, Square: SquareIndex(2, 3), Owner: Top},
			7:           {Kind: Giraffe, Square: SquareIndex(0, 3), Owner: Top},
		},
		Turn: Bottom,
	}
}

// inFarZone reports whether sq lies in the opponent-side rank band for p:
// the promotion zone for chicks and the try zone for lions.
func inFarZone(sq int, p Player) bool {
	if sq < 0 {
		return false
	}
	if p == Bottom {
		return sq >= NumSquares-BoardCols
	}
	return sq < BoardCols
}

// GameOver reports whether the game has ended, either by lion capture or by
// a lion standing in the opposing far zone (the try rule), and who won.
func GameOver(pos Position) (Player, bool) {
	if !pos[BottomLion].OnBoard() {
		return Top, true
	}
	if !pos[TopLion].OnBoard() {
		return Bottom, true
	}
	if inFarZone(pos[BottomLion].Square, Bottom) {
		return Bottom, true
	}
	if inFarZone(pos[TopLion].Square, Top) {
		return Top, true
	}
	return Bottom, false
}

// TryApplyMove validates move against the legal move list and, if legal,
// returns the successor state with the same side to move. Callers flip the
// turn themselves after inspecting the result.
func TryApplyMove(state GameState, move Move) (bool, GameState) {
	for _, m := range PossibleMoves(state.Pieces, state.Turn) {
		if m == move {
			next := state
			next.Pieces = ApplyMove(state.Pieces, m)
			return true, next
		}
	}
	return false, state
}

func PieceKindCode(k PieceKind) string {
	switch k {
	case Chick:
		return "C"
	case Elephant:
		return "E"
	case Giraffe:
		return "G"
	case Lion:
		return "L"
	case Hen:
		return "H"
	default:
		return "?"
	}
}

func ParsePieceChar(ch string) (PieceKind, bool) {
	switch strings.ToUpper(ch) {
	case "C":
		return Chick, true
	case "E":
		return Elephant, true
	case "G":
		return Giraffe, true
	case "L":
		return Lion, true
	case "H":
		return Hen, true
	default:
		return Chick, false
	}
}

func FormatMove(pos Position, m Move) string {
	if m.IsDrop(pos) {
		return fmt.Sprintf("%s@%s", PieceKindCode(pos[m.From].Kind), SquareString(m.To))
	}
	return SquareString(pos[m.From].Square) + SquareString(m.To)
}

func SquareString(sq int) string {
	return fmt.Sprintf("%c%d", 'a'+sq%BoardCols, sq/BoardCols+1)
}

func ParseSquare(token string) (int, error) {
	if len(token) != 2 {
		return 0, errors.New("square format a1")
	}
	colRune := token[0]
	rowRune := token[1]

	if colRune < 'a' || colRune >= 'a'+BoardCols {
		return 0, errors.New("column must be a-c")
	}
	if rowRune < '1' || rowRune >= '1'+BoardRows {
		return 0, errors.New("row must be 1-4")
	}
	return SquareIndex(int(colRune-'a'), int(rowRune-'1')), nil
}

// MoveFromSquares builds a board move from two square indices by locating
// the token standing on from.
func MoveFromSquares(pos Position, from, to int) (Move, error) {
	for i, p := range pos {
		if p.OnBoard() && p.Square == from {
			return Move{From: i, To: to}, nil
		}
	}
	return Move{}, errors.New("no piece on source square")
}

// DropMove builds a drop of the given kind for turn, using the canonical
// hand token so the result matches what PossibleMoves emits.
func DropMove(pos Position, turn Player, kind PieceKind, to int) (Move, error) {
	for i, p := range pos {
		if p.Owner != turn || p.OnBoard() || p.Kind != kind {
			continue
		}
		if canDropFrom(pos, i) {
			return Move{From: i, To: to}, nil
		}
	}
	return Move{}, errors.New("specified drop piece is not in hand")
}

func ParseMove(pos Position, turn Player, input string) (Move, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Move{}, errors.New("empty input")
	}

	if strings.Contains(s, "@") {
		parts := strings.Split(s, "@")
		if len(parts) != 2 || len(parts[0]) != 1 || len(parts[1]) != 2 {
			return Move{}, errors.New("drop format C@b3")
		}
		kind, ok := ParsePieceChar(parts[0])
		if !ok {
			return Move{}, errors.New("unknown piece for drop")
		}
		to, err := ParseSquare(parts[1])
		if err != nil {
			return Move{}, err
		}
		return DropMove(pos, turn, kind, to)
	}

	if len(s) != 4 {
		return Move{}, errors.New("move format b2b3")
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, err
	}
	return MoveFromSquares(pos, from, to)
}
