package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dobutsu/game"
)

var (
	errInvalidMoveSpec  = errors.New("specify either 'from' or 'drop', not both")
	errMissingTarget    = errors.New("'to' is required")
	errUnknownDropPiece = errors.New("unknown piece type for drop")
)

// Server exposes games over a JSON API. One game per ID, created on demand;
// either seat can be a human or one of the engines.
type Server struct {
	log          zerolog.Logger
	defaultDepth int

	mu    sync.Mutex
	games map[string]*session
}

func New(log zerolog.Logger, defaultDepth int) *Server {
	if defaultDepth < 1 {
		defaultDepth = 5
	}
	return &Server{
		log:          log,
		defaultDepth: defaultDepth,
		games:        make(map[string]*session),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Get("/legal", s.handleLegal)
			r.Post("/move", s.handleMove)
			r.Post("/reset", s.handleReset)
			r.Post("/engine", s.handleEngine)
			r.Get("/ws", s.handleWatch)
		})
	})
	return r
}

type cellPayload struct {
	Kind  string `json:"kind,omitempty"`
	Owner string `json:"owner,omitempty"`
}

type statePayload struct {
	ID      string              `json:"id"`
	Board   []cellPayload       `json:"board"`
	Hands   map[string][]string `json:"hands"`
	Turn    string              `json:"turn"`
	Over    bool                `json:"over"`
	Winner  string              `json:"winner,omitempty"`
	Engines map[string]string   `json:"engines"`
	Depth   int                 `json:"depth"`
	History []historyEntry      `json:"history"`
	Message string              `json:"message,omitempty"`
}

type createRequest struct {
	Engine string `json:"engine,omitempty"`
	Player string `json:"player,omitempty"`
	Depth  int    `json:"depth,omitempty"`
}

type moveRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Drop string `json:"drop,omitempty"`
}

type engineRequest struct {
	Player string `json:"player"`
	Engine string `json:"engine"`
	Depth  int    `json:"depth,omitempty"`
}

type legalResponse struct {
	Moves []string `json:"moves"`
}

type listResponse struct {
	Games []string `json:"games"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.Body != nil {
		// An empty body means a two-human game with defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(s.defaultDepth)
	if req.Engine != "" {
		player, ok := parsePlayer(req.Player)
		if !ok {
			writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "unknown player"})
			return
		}
		if err := sess.setEngine(player, req.Engine, req.Depth); err != nil {
			writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	s.games[sess.id] = sess
	s.log.Info().Str("game", sess.id).Msg("game created")

	notes := sess.runEngines(s.log)
	payload := s.statePayload(sess)
	payload.Message = strings.Join(notes, " / ")
	writeJSON(s.log, w, http.StatusCreated, payload)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := listResponse{Games: make([]string, 0, len(s.games))}
	for id := range s.games {
		resp.Games = append(resp.Games, id)
	}
	writeJSON(s.log, w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[chi.URLParam(r, "gameID")]
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}
	writeJSON(s.log, w, http.StatusOK, s.statePayload(sess))
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[chi.URLParam(r, "gameID")]
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}

	from := strings.TrimSpace(r.URL.Query().Get("from"))
	drop := strings.TrimSpace(r.URL.Query().Get("drop"))
	if from == "" && drop == "" {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "query 'from' or 'drop' is required"})
		return
	}

	var filtered []game.Move
	if from != "" {
		sq, err := game.ParseSquare(strings.ToLower(from))
		if err != nil {
			writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		for _, m := range game.PossibleMoves(sess.state.Pieces, sess.state.Turn) {
			if !m.IsDrop(sess.state.Pieces) && sess.state.Pieces[m.From].Square == sq {
				filtered = append(filtered, m)
			}
		}
	} else {
		kind, ok := game.ParsePieceChar(drop)
		if !ok {
			writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "unknown piece type for drop"})
			return
		}
		for _, m := range game.PossibleMoves(sess.state.Pieces, sess.state.Turn) {
			if m.IsDrop(sess.state.Pieces) && sess.state.Pieces[m.From].Kind == kind {
				filtered = append(filtered, m)
			}
		}
	}

	resp := legalResponse{Moves: make([]string, 0, len(filtered))}
	for _, m := range filtered {
		resp.Moves = append(resp.Moves, game.SquareString(m.To))
	}
	writeJSON(s.log, w, http.StatusOK, resp)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[chi.URLParam(r, "gameID")]
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}
	if _, over := game.GameOver(sess.state.Pieces); over {
		writeJSON(s.log, w, http.StatusConflict, errorResponse{Error: "game is already over"})
		return
	}

	mv, err := s.moveFromRequest(sess, req)
	if err != nil {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	text := game.FormatMove(sess.state.Pieces, mv)
	if !sess.applyMove(mv) {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "illegal move"})
		return
	}
	s.log.Info().Str("game", sess.id).Str("move", text).Msg("move played")

	notes := sess.runEngines(s.log)
	s.broadcastLocked(sess)

	payload := s.statePayload(sess)
	payload.Message = strings.Join(notes, " / ")
	writeJSON(s.log, w, http.StatusOK, payload)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[chi.URLParam(r, "gameID")]
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}
	sess.reset()
	notes := sess.runEngines(s.log)
	s.broadcastLocked(sess)

	payload := s.statePayload(sess)
	payload.Message = strings.Join(notes, " / ")
	writeJSON(s.log, w, http.StatusOK, payload)
}

func (s *Server) handleEngine(w http.ResponseWriter, r *http.Request) {
	var req engineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[chi.URLParam(r, "gameID")]
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}
	player, ok := parsePlayer(req.Player)
	if !ok {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: "unknown player"})
		return
	}
	if err := sess.setEngine(player, req.Engine, req.Depth); err != nil {
		writeJSON(s.log, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	notes := sess.runEngines(s.log)
	s.broadcastLocked(sess)

	payload := s.statePayload(sess)
	payload.Message = strings.Join(notes, " / ")
	writeJSON(s.log, w, http.StatusOK, payload)
}

func (s *Server) moveFromRequest(sess *session, req moveRequest) (game.Move, error) {
	pos := sess.state.Pieces
	turn := sess.state.Turn

	if req.Drop != "" && req.From != "" {
		return game.Move{}, errInvalidMoveSpec
	}
	if req.To == "" {
		return game.Move{}, errMissingTarget
	}
	to, err := game.ParseSquare(strings.ToLower(req.To))
	if err != nil {
		return game.Move{}, err
	}

	if req.Drop != "" {
		kind, ok := game.ParsePieceChar(req.Drop)
		if !ok {
			return game.Move{}, errUnknownDropPiece
		}
		return game.DropMove(pos, turn, kind, to)
	}
	if req.From == "" {
		return game.Move{}, errInvalidMoveSpec
	}
	from, err := game.ParseSquare(strings.ToLower(req.From))
	if err != nil {
		return game.Move{}, err
	}
	return game.MoveFromSquares(pos, from, to)
}

func (s *Server) statePayload(sess *session) statePayload {
	payload := statePayload{
		ID:    sess.id,
		Board: make([]cellPayload, game.NumSquares),
		Hands: map[string][]string{
			"bottom": {},
			"top":    {},
		},
		Turn: playerKey(sess.state.Turn),
		Engines: map[string]string{
			"bottom": sess.modes[game.Bottom],
			"top":    sess.modes[game.Top],
		},
		Depth:   sess.depth,
		History: append([]historyEntry(nil), sess.history...),
	}

	for _, p := range sess.state.Pieces {
		if p.OnBoard() {
			payload.Board[p.Square] = cellPayload{
				Kind:  game.PieceKindCode(p.Kind),
				Owner: playerKey(p.Owner),
			}
			continue
		}
		key := playerKey(p.Owner)
		payload.Hands[key] = append(payload.Hands[key], game.PieceKindCode(p.Kind))
	}

	if winner, over := game.GameOver(sess.state.Pieces); over {
		payload.Over = true
		payload.Winner = playerKey(winner)
	}
	return payload
}

func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
