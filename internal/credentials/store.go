package credentials

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"golang.org/x/oauth2"
)

// Store is the credential store. The zero value is not usable; see [NewStore].
type Store struct {
	mu       sync.Mutex
	backend  Backend
	current  models.Credential
	degraded bool
	logger   *log.Logger
}

// NewStore creates a store over backend. A nil backend keeps the credential in memory.
func NewStore(backend Backend, logger *log.Logger) *Store {
	if backend == nil {
		backend = &MemoryBackend{}
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Store{backend: backend, logger: logger}
}

// Load returns the stored credential, if any.
func (s *Store) Load() (models.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return s.current, s.current.Present()
	}

	value, ok, err := s.backend.Get()
	if err != nil {
		s.degrade("load", err)
		return s.current, s.current.Present()
	}
	if !ok {
		s.current = ""
		return "", false
	}

	s.current = models.Credential(value)
	return s.current, s.current.Present()
}

// Save stores c, replacing any previous credential. Saving the empty credential clears the store.
func (s *Store) Save(c models.Credential) {
	if !c.Present() {
		s.Clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = c
	if s.degraded {
		return
	}
	if err := s.backend.Set(c.String()); err != nil {
		s.degrade("save", err)
		return
	}
	s.logger.Debug("credential saved", "token", c.Redacted())
}

// Clear removes the stored credential.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ""
	if s.degraded {
		return
	}
	if err := s.backend.Delete(); err != nil {
		s.degrade("clear", err)
		return
	}
	s.logger.Debug("credential cleared")
}

// Degraded reports whether the store has fallen back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// caller holds s.mu
func (s *Store) degrade(op string, err error) {
	s.degraded = true
	s.logger.Warn("credential storage unavailable, keeping credential in memory", "op", op, "error", err)
}

// TokenSource adapts the store to [oauth2.TokenSource]. The token's expiry is taken from the
// credential's unverified claims when they carry one.
func (s *Store) TokenSource() oauth2.TokenSource { return storeTokenSource{s} }

type storeTokenSource struct{ store *Store }

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	c, ok := ts.store.Load()
	if !ok {
		return nil, fmt.Errorf("%w: no stored credential", shared.ErrUnauthenticated)
	}
	return Token(c), nil
}

// Token wraps c as a bearer [oauth2.Token].
func Token(c models.Credential) *oauth2.Token {
	token := &oauth2.Token{AccessToken: c.String(), TokenType: "Bearer"}
	if claims, err := c.Claims(); err == nil {
		token.Expiry = claims.ExpiresAt
	}
	return token
}
