package ui

import (
	"strconv"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/guard"
	"github.com/kidandcat/motk/internal/session"
)

// Shell waits for the session to be resolved, applies the guard to the
// current path and renders the navigation bar around the chosen page.
type Shell struct {
	app.Compo
	Deps *Deps

	ready       bool
	state       session.State
	path        string
	unsubscribe func()
}

func (s *Shell) OnMount(ctx app.Context) {
	s.Deps.Start()
	s.unsubscribe = s.Deps.Session.Subscribe(func(st session.State) {
		ctx.Dispatch(func(ctx app.Context) {
			s.state = st
			s.resolve(ctx)
		})
	})
	ctx.Async(func() {
		<-s.Deps.Session.Ready()
		ctx.Dispatch(func(ctx app.Context) {
			s.ready = true
			s.state = s.Deps.Session.State()
			s.resolve(ctx)
		})
	})
}

func (s *Shell) OnNav(ctx app.Context) {
	s.resolve(ctx)
}

func (s *Shell) OnDismount() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Shell) resolve(ctx app.Context) {
	if !s.ready {
		return
	}
	d := s.Deps.Guard.Resolve(ctx.Page().URL().Path, s.state.Authenticated)
	s.path = d.Path
	if d.Redirect {
		ctx.Navigate(d.Path)
	}
}

func (s *Shell) logout(ctx app.Context, e app.Event) {
	s.Deps.Session.Logout()
}

func (s *Shell) Render() app.UI {
	if !s.ready {
		return app.Div().Class("loading-overlay").Body(
			app.Div().Class("loading-spinner"),
		)
	}
	if !s.state.Authenticated {
		return &LoginPage{Deps: s.Deps}
	}

	return app.Div().Class("shell").Body(
		s.renderNav(),
		app.Main().Class("content").Body(s.page()),
	)
}

func (s *Shell) page() app.UI {
	switch s.path {
	case "/organizations":
		return &OrganizationsPage{Deps: s.Deps}
	case "/projects":
		return &ProjectsPage{Deps: s.Deps}
	case "/shots":
		return &ShotsPage{Deps: s.Deps}
	case "/assets":
		return &AssetsPage{Deps: s.Deps}
	case "/tasks":
		return &TasksPage{Deps: s.Deps}
	case "/users":
		return &UsersPage{Deps: s.Deps}
	}
	if rest, ok := strings.CutPrefix(s.path, "/projects/"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return &ProjectPage{Deps: s.Deps, ID: id}
		}
		return app.P().Class("error").Text("Invalid project id.")
	}
	return &DashboardPage{Deps: s.Deps, Account: s.state.Account}
}

func (s *Shell) renderNav() app.UI {
	link := func(href, label string) app.UI {
		cls := "nav-link"
		if s.path == href || (href != guard.LandingPath && strings.HasPrefix(s.path, href+"/")) {
			cls += " active"
		}
		return app.A().Class(cls).Href(href).Text(label)
	}

	name := ""
	if s.state.Account != nil {
		name = s.state.Account.DisplayName
	}

	return app.Nav().Class("navbar").Body(
		app.Span().Class("brand").Text("MOTK"),
		link(guard.LandingPath, "Dashboard"),
		link("/organizations", "Organizations"),
		link("/projects", "Projects"),
		link("/shots", "Shots"),
		link("/assets", "Assets"),
		link("/tasks", "Tasks"),
		link("/users", "Users"),
		app.Div().Class("nav-spacer"),
		app.Span().Class("nav-user").Text(name),
		app.Button().Class("btn btn-secondary").Text("Logout").OnClick(s.logout),
	)
}
