package session

import "sync"

const (
	KeyPlayerID   = "playerId"
	KeyPlayerName = "playerName"
	KeyGameID     = "gameId"
)

// Store holds the string values that live as long as the client process,
// the way a browser tab keeps its session storage.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.values)
}

func (s *Store) PlayerID() string {
	v, _ := s.Get(KeyPlayerID)
	return v
}

func (s *Store) PlayerName() string {
	v, _ := s.Get(KeyPlayerName)
	return v
}

func (s *Store) GameID() string {
	v, _ := s.Get(KeyGameID)
	return v
}
