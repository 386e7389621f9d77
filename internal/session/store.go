// Package session owns the client's notion of who is logged in. The only
// persisted state is the bearer token; the account is resolved from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

// Resolver maps the current token to its account (GET /accounts/me).
type Resolver interface {
	Me(ctx context.Context) (models.Account, error)
}

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	Account       *models.Account
}

type Store struct {
	tokens   TokenStore
	resolver Resolver

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int

	ready     chan struct{}
	readyOnce sync.Once
}

func New(tokens TokenStore, resolver Resolver) *Store {
	return &Store{
		tokens:    tokens,
		resolver:  resolver,
		listeners: map[int]func(State){},
		ready:     make(chan struct{}),
	}
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() string {
	return s.tokens.Token()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready is closed once Bootstrap has finished, whatever its outcome.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn to run after every state change. The returned func
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Bootstrap restores the session from the persisted token. With no token it
// completes without a request; otherwise it issues exactly one identity
// lookup. Any failure purges the token.
func (s *Store) Bootstrap(ctx context.Context) {
	defer s.readyOnce.Do(func() { close(s.ready) })

	if s.tokens.Token() == "" {
		s.set(State{})
		return
	}

	acc, err := s.resolver.Me(ctx)
	if err != nil {
		logging.Logger.Warnf("Event ID: SESSION_BOOTSTRAP_FAILED, Description: stored token rejected: %v", err)
		s.purge()
		return
	}
	logging.Logger.Infof("Event ID: SESSION_RESTORED, Description: session restored for %s", acc.AccountName)
	s.set(State{Authenticated: true, Account: &acc})
}

// Login persists token and resolves the account it belongs to. On failure
// the token is removed again and the store stays unauthenticated.
func (s *Store) Login(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("login: empty token")
	}
	if err := s.tokens.SetToken(token); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	acc, err := s.resolver.Me(ctx)
	if err != nil {
		s.purge()
		return fmt.Errorf("login: resolve account: %w", err)
	}
	logging.Logger.Infof("Event ID: SESSION_LOGIN, Description: %s logged in", acc.AccountName)
	s.set(State{Authenticated: true, Account: &acc})
	return nil
}

// Logout clears the token and identity. It never touches the network.
func (s *Store) Logout() {
	s.purge()
	logging.Logger.Info("Event ID: SESSION_LOGOUT, Description: session cleared")
}

// HandleUnauthorized is installed as the API client's 401 hook.
func (s *Store) HandleUnauthorized() {
	if !s.State().Authenticated {
		return
	}
	logging.Logger.Warn("Event ID: SESSION_EXPIRED, Description: server rejected the token")
	s.purge()
}

func (s *Store) purge() {
	if err := s.tokens.ClearToken(); err != nil {
		logging.Logger.Errorf("Event ID: TOKEN_CLEAR_FAILED, Description: %v", err)
	}
	s.set(State{})
}

func (s *Store) set(st State) {
	s.mu.Lock()
	s.state = st
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
