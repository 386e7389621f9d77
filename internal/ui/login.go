package ui

import (
	"context"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/logging"
)

const loginFailed = "Login failed. Please check your credentials."

type LoginPage struct {
	app.Compo
	Deps *Deps

	username string
	password string
	pending  bool
	err      string
}

func (p *LoginPage) submit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if p.pending {
		return
	}
	p.pending = true
	p.err = ""
	username, password := p.username, p.password

	ctx.Async(func() {
		bg := context.Background()
		tok, err := p.Deps.API.Login(bg, username, password)
		if err == nil {
			err = p.Deps.Session.Login(bg, tok.AccessToken)
		}
		if err != nil {
			logging.Logger.Infof("Event ID: LOGIN_FAILED, Description: %v", err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			p.pending = false
			if err != nil {
				p.err = apiclient.Message(err, loginFailed)
			}
		})
	})
}

func (p *LoginPage) Render() app.UI {
	return app.Div().Class("login-container").Body(
		app.Form().Class("card login-card").OnSubmit(p.submit).Body(
			app.H1().Text("MOTK Login"),
			app.If(p.err != "", func() app.UI {
				return app.P().Class("error").Text(p.err)
			}),
			app.Label().For("username").Text("Username"),
			app.Input().
				ID("username").
				Type("text").
				Value(p.username).
				AutoFocus(true).
				Required(true).
				OnInput(func(ctx app.Context, e app.Event) {
					p.username = ctx.JSSrc().Get("value").String()
				}),
			app.Label().For("password").Text("Password"),
			app.Input().
				ID("password").
				Type("password").
				Value(p.password).
				Required(true).
				OnInput(func(ctx app.Context, e app.Event) {
					p.password = ctx.JSSrc().Get("value").String()
				}),
			app.Button().
				Class("btn btn-primary").
				Type("submit").
				Disabled(p.pending).
				Text(loginLabel(p.pending)),
		),
	)
}

func loginLabel(pending bool) string {
	if pending {
		return "Logging in..."
	}
	return "Login"
}
