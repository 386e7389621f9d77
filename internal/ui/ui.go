// Package ui is the MOTK browser app. The same routes are registered by the
// server, which prerenders the shell, and by the wasm binary, which runs it.
package ui

import (
	"context"
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/guard"
	"github.com/kidandcat/motk/internal/session"
)

// Paths are the screens the guard lets an authenticated user reach.
var Paths = []string{"/", "/organizations", "/projects", "/projects/", "/shots", "/assets", "/tasks", "/users"}

// Deps is shared by every page. It is built once per process.
type Deps struct {
	API     *apiclient.Client
	Session *session.Store
	Guard   *guard.Guard

	start sync.Once
}

func NewDeps(baseURL string, tokens session.TokenStore) *Deps {
	c := apiclient.New(baseURL, tokens)
	s := session.New(tokens, c)
	c.OnUnauthorized(s.HandleUnauthorized)
	return &Deps{API: c, Session: s, Guard: guard.New(Paths...)}
}

// Start resolves the persisted token in the background. Later calls are
// no-ops.
func (d *Deps) Start() {
	d.start.Do(func() {
		go d.Session.Bootstrap(context.Background())
	})
}

// Routes sends every path to the shell, which applies the guard and picks
// the page.
func Routes(d *Deps) {
	app.RouteWithRegexp(`^/.*$`, func() app.Composer { return &Shell{Deps: d} })
}
