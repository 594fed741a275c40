package game

// Bit layout of an encoded state: five bits per slot (four for the square,
// with 12 standing in for hand pieces, one for the owner), then one
// side-to-move bit, then the promotion state of the two chick slots. The two
// extra bits are needed because the per-slot field records where a token
// stands, not whether it currently moves as a hen.
const (
	encodedHandSquare = 12
	sideToMoveBit     = 40
	bottomChickHenBit = 41
	topChickHenBit    = 42
)

// EncodeState packs a position plus the side to move into a single uint64
// key. Equal states always encode equally, so the encoding doubles as the
// transposition-table key; distinct states are distinct by construction
// since every field occupies its own bits.
func EncodeState(pos Position, turn Player) uint64 {
	var key uint64
	for i, p := range pos {
		bits := uint64(encodedHandSquare)
		if p.OnBoard() {
			bits = uint64(p.Square)
		}
		if p.Owner == Top {
			bits |= 1 << 4
		}
		key |= bits << (5 * uint(i))
	}
	if turn == Top {
		key |= 1 << sideToMoveBit
	}
	if pos[BottomChick].Kind == Hen {
		key |= 1 << bottomChickHenBit
	}
	if pos[TopChick].Kind == Hen {
		key |= 1 << topChickHenBit
	}
	return key
}
