// Package credentials holds the bearer token attached to status queries.
package credentials

import (
	"net/http"
	"strings"
	"sync"
)

// Source supplies the bearer token for the next outbound request. An empty
// token means the request goes out unauthenticated.
type Source interface {
	Token() string
}

// Store is a process-wide token that may be replaced at any time
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore returns an empty Store
func NewStore() *Store {
	return &Store{}
}

// Token returns the current token
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the current token
func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear removes the current token
func (s *Store) Clear() {
	s.Set("")
}

// Static is a token that never changes
type Static string

// Token implements Source
func (s Static) Token() string {
	return string(s)
}

// BearerToken extracts the token from a request's Authorization header
func BearerToken(req *http.Request) (string, bool) {
	h := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
