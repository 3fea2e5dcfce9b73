// Package apitest provides a scripted stand-in for the poker dice game
// server. It does not play the game: tests set the state it reports and
// inspect the requests it received.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/DoyleJ11/dicegame/pkg/types"
	"github.com/go-chi/chi/v5"
)

const SessionCookie = "session"

type Request struct {
	Method string
	Path   string
	Body   []byte
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	state       types.GameState
	playerID    string
	gameStarted bool
	failures    map[string]string
	requests    []Request
	stateHook   func(calls int)
	stateCalls  int
}

// NewServer starts a server for gameID that assigns playerID on join.
func NewServer(gameID, playerID string) *Server {
	s := &Server{
		state:    types.GameState{GameID: gameID, Status: types.StatusWaiting, CurrentRound: 1, MaxRounds: 3},
		playerID: playerID,
		failures: map[string]string{},
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/create_game", s.createGame)
	r.Post("/join_game", s.joinGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireGame)
		r.Get("/state", s.getState)
		r.Post("/ready", s.action("ready"))
		r.Post("/reroll", s.action("reroll"))
		r.Post("/end_turn", s.action("end_turn"))
		r.Post("/leave", s.action("leave"))
	})

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) SetState(state types.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// SetGameStarted controls the game_started flag of the next ready replies.
func (s *Server) SetGameStarted(started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameStarted = started
}

// Fail makes the named action ("create_game", "join_game", "ready",
// "reroll", "end_turn", "leave", "state") report msg as an error.
func (s *Server) Fail(action, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[action] = msg
}

// OnState runs hook with the running count each time the state is fetched.
func (s *Server) OnState(hook func(calls int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateHook = hook
}

func (s *Server) StateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateCalls
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request to path.
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		known := chi.URLParam(r, "id") == s.state.GameID
		s.mu.Unlock()
		if !known {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "game not found"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failure(action string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.failures[action]
	return msg, ok
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	if msg, ok := s.failure("create_game"); ok {
		writeJSON(w, http.StatusOK, types.CreateGameResponse{Error: msg})
		return
	}
	s.mu.Lock()
	id := s.state.GameID
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, types.CreateGameResponse{Success: true, GameID: id})
}

func (s *Server) joinGame(w http.ResponseWriter, r *http.Request) {
	if msg, ok := s.failure("join_game"); ok {
		writeJSON(w, http.StatusOK, types.JoinGameResponse{Error: msg})
		return
	}
	var req types.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" || req.PlayerName == "" {
		writeJSON(w, http.StatusOK, types.JoinGameResponse{Error: "invalid data"})
		return
	}

	s.mu.Lock()
	if req.GameID != s.state.GameID {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, types.JoinGameResponse{Error: "game not found"})
		return
	}
	s.state.Players = append(s.state.Players, types.Player{ID: s.playerID, Name: req.PlayerName})
	state := s.state
	playerID := s.playerID
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: playerID, Path: "/"})
	writeJSON(w, http.StatusOK, types.JoinGameResponse{Success: true, PlayerID: playerID, GameState: &state})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.stateCalls++
	calls := s.stateCalls
	hook := s.stateHook
	s.mu.Unlock()

	if hook != nil {
		hook(calls)
	}

	if msg, ok := s.failure("state"); ok {
		writeJSON(w, http.StatusOK, types.GameState{Error: msg})
		return
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) action(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(SessionCookie); err != nil {
			writeJSON(w, http.StatusOK, types.ActionResponse{Error: "player not authorized"})
			return
		}
		if msg, ok := s.failure(name); ok {
			writeJSON(w, http.StatusOK, types.ActionResponse{Error: msg})
			return
		}

		s.mu.Lock()
		state := s.state
		started := s.gameStarted
		s.mu.Unlock()

		switch name {
		case "ready":
			writeJSON(w, http.StatusOK, types.ReadyResponse{Success: true, GameStarted: started, GameState: &state})
		case "leave":
			writeJSON(w, http.StatusOK, types.ActionResponse{Success: true})
		default:
			writeJSON(w, http.StatusOK, types.ActionResponse{Success: true, GameState: &state})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
