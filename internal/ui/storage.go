package ui

import (
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/session"
)

// LocalTokens keeps the access token in the browser's localStorage under
// session.StorageKey. Outside a browser it behaves as an empty store.
type LocalTokens struct {
	mu sync.Mutex
}

func (l *LocalTokens) storage() (app.Value, bool) {
	if !app.IsClient {
		return nil, false
	}
	s := app.Window().Get("localStorage")
	return s, s.Truthy()
}

func (l *LocalTokens) Token() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.storage()
	if !ok {
		return ""
	}
	v := s.Call("getItem", session.StorageKey)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}

func (l *LocalTokens) SetToken(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.storage(); ok {
		s.Call("setItem", session.StorageKey, token)
	}
	return nil
}

func (l *LocalTokens) ClearToken() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.storage(); ok {
		s.Call("removeItem", session.StorageKey)
	}
	return nil
}
