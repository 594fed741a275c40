package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dobutsu/game"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(zerolog.Nop(), 3)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeState(t *testing.T, resp *http.Response) statePayload {
	t.Helper()
	defer resp.Body.Close()
	var payload statePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return payload
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", createRequest{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	payload := decodeState(t, resp)
	if payload.ID == "" {
		t.Fatalf("expected a game ID")
	}
	if len(payload.Board) != game.NumSquares {
		t.Fatalf("expected %d board cells, got %d", game.NumSquares, len(payload.Board))
	}
	if payload.Turn != "bottom" {
		t.Fatalf("expected bottom to move, got %q", payload.Turn)
	}
	if payload.Over {
		t.Fatalf("fresh game reported as over")
	}
}

func TestUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/games/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMoveAgainstEngine(t *testing.T) {
	ts := newTestServer(t)

	created := decodeState(t, postJSON(t, ts.URL+"/api/games", createRequest{
		Engine: "alpha-beta",
		Player: "top",
		Depth:  2,
	}))
	if created.Engines["top"] != "alpha-beta" {
		t.Fatalf("engine not attached: %+v", created.Engines)
	}

	resp := postJSON(t, ts.URL+"/api/games/"+created.ID+"/move", moveRequest{From: "b2", To: "b3"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeState(t, resp)
	if len(payload.History) != 2 {
		t.Fatalf("expected the engine to answer, history: %+v", payload.History)
	}
	if payload.Turn != "bottom" {
		t.Fatalf("expected bottom to move again, got %q", payload.Turn)
	}
	if payload.Message == "" {
		t.Fatalf("expected an engine note in the response")
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	ts := newTestServer(t)
	created := decodeState(t, postJSON(t, ts.URL+"/api/games", createRequest{}))

	resp := postJSON(t, ts.URL+"/api/games/"+created.ID+"/move", moveRequest{From: "b1", To: "b4"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a teleporting lion, got %d", resp.StatusCode)
	}
}

func TestLegalEndpoint(t *testing.T) {
	ts := newTestServer(t)
	created := decodeState(t, postJSON(t, ts.URL+"/api/games", createRequest{}))

	resp, err := http.Get(ts.URL + "/api/games/" + created.ID + "/legal?from=b1")
	if err != nil {
		t.Fatalf("GET legal: %v", err)
	}
	defer resp.Body.Close()
	var legal legalResponse
	if err := json.NewDecoder(resp.Body).Decode(&legal); err != nil {
		t.Fatalf("decode legal: %v", err)
	}
	want := map[string]bool{"a2": true, "c2": true}
	if len(legal.Moves) != len(want) {
		t.Fatalf("expected %d lion moves, got %v", len(want), legal.Moves)
	}
	for _, sq := range legal.Moves {
		if !want[sq] {
			t.Fatalf("unexpected lion destination %q", sq)
		}
	}
}

func TestWatchStreamsState(t *testing.T) {
	ts := newTestServer(t)
	created := decodeState(t, postJSON(t, ts.URL+"/api/games", createRequest{}))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + created.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %q", msg.Type)
	}

	resp := postJSON(t, ts.URL+"/api/games/"+created.ID+"/move", moveRequest{From: "b2", To: "b3"})
	resp.Body.Close()

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var payload statePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decode broadcast payload: %v", err)
	}
	if len(payload.History) != 1 {
		t.Fatalf("expected one move in broadcast history, got %+v", payload.History)
	}
}
