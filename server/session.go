package server

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dobutsu/game"
)

const (
	engineRandom    = "random"
	engineAlphaBeta = "alpha-beta"
	engineMCTS      = "mcts"
	engineHuman     = "human"
)

// session is one running game. The server mutex guards every field; the
// played list mirrors each position the game has visited so engines can
// honor the repetition rule.
type session struct {
	id      string
	state   game.GameState
	played  []game.Position
	history []historyEntry
	engines map[game.Player]game.Engine
	modes   map[game.Player]string
	depth   int
	clients map[*wsClient]struct{}
	created time.Time
	updated time.Time
}

type historyEntry struct {
	Player string `json:"player"`
	Move   string `json:"move"`
}

func newSession(depth int) *session {
	s := &session{
		id:      uuid.NewString(),
		state:   game.NewGame(),
		depth:   depth,
		engines: make(map[game.Player]game.Engine),
		modes: map[game.Player]string{
			game.Bottom: engineHuman,
			game.Top:    engineHuman,
		},
		clients: make(map[*wsClient]struct{}),
		created: time.Now(),
	}
	s.updated = s.created
	s.played = append(s.played, s.state.Pieces)
	return s
}

func (s *session) reset() {
	s.state = game.NewGame()
	s.played = s.played[:0]
	s.played = append(s.played, s.state.Pieces)
	s.history = nil
	s.updated = time.Now()
}

func (s *session) setEngine(player game.Player, mode string, depth int) error {
	mode = strings.TrimSpace(mode)
	if depth < 1 {
		depth = s.depth
	}
	switch mode {
	case "", engineHuman:
		delete(s.engines, player)
		s.modes[player] = engineHuman
	case engineRandom:
		s.engines[player] = game.NewRandomEngine(time.Now().UnixNano())
		s.modes[player] = mode
	case engineAlphaBeta:
		s.engines[player] = game.NewAlphaBetaEngine(depth)
		s.modes[player] = mode
	case engineMCTS:
		s.engines[player] = game.NewMCTSEngine(0, time.Now().UnixNano())
		s.modes[player] = mode
	default:
		return errors.New("unknown engine requested")
	}
	return nil
}

// applyMove validates and plays one move for the side to move, recording
// the new position in the repetition history.
func (s *session) applyMove(mv game.Move) bool {
	legal, next := game.TryApplyMove(s.state, mv)
	if !legal {
		return false
	}
	mover := s.state.Turn
	text := game.FormatMove(s.state.Pieces, mv)
	s.state = next
	s.state.Turn = mover.Opponent()
	s.played = append(s.played, s.state.Pieces)
	s.history = append(s.history, historyEntry{Player: playerKey(mover), Move: text})
	s.updated = time.Now()
	return true
}

// maxEngineMoves bounds one engine-vs-engine exchange; random play can
// cycle forever otherwise.
const maxEngineMoves = 256

// runEngines lets engines answer until a human is to move or the game ends,
// returning one note per engine move for the HTTP response.
func (s *session) runEngines(log zerolog.Logger) []string {
	var notes []string
	for len(notes) < maxEngineMoves {
		if _, over := game.GameOver(s.state.Pieces); over {
			break
		}
		eng := s.engines[s.state.Turn]
		if eng == nil {
			break
		}
		mover := s.state.Turn
		mv, err := eng.NextMove(s.state, s.played)
		if err != nil {
			log.Error().Err(err).Str("game", s.id).Msg("engine failed to produce a move")
			break
		}
		text := game.FormatMove(s.state.Pieces, mv)
		if !s.applyMove(mv) {
			log.Error().Str("game", s.id).Str("move", text).Msg("engine produced an illegal move")
			break
		}
		log.Debug().Str("game", s.id).Str("move", text).Msg("engine move")
		notes = append(notes, mover.Label()+": "+text)
	}
	return notes
}

func playerKey(p game.Player) string {
	if p == game.Bottom {
		return "bottom"
	}
	return "top"
}

func parsePlayer(value string) (game.Player, bool) {
	switch strings.ToLower(value) {
	case "", "top":
		return game.Top, true
	case "bottom":
		return game.Bottom, true
	default:
		return game.Bottom, false
	}
}
