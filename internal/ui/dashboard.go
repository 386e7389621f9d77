package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/models"
)

type DashboardPage struct {
	app.Compo
	Deps    *Deps
	Account *models.Account
}

func (p *DashboardPage) Render() app.UI {
	name := "there"
	if p.Account != nil {
		name = p.Account.DisplayName
	}

	card := func(href, title, text string) app.UI {
		return app.A().Class("card dashboard-card").Href(href).Body(
			app.H3().Text(title),
			app.P().Text(text),
		)
	}

	return app.Div().Class("dashboard").Body(
		app.H1().Text("Dashboard"),
		app.P().Class("muted").Text("Welcome, "+name+"."),
		app.Div().Class("card-grid").Body(
			card("/organizations", "Organizations", "Studios and clients."),
			card("/projects", "Projects", "Productions and their crews."),
			card("/shots", "Shots", "Every shot across your projects."),
			card("/assets", "Assets", "Characters, props and environments."),
			card("/tasks", "Tasks", "Work assigned to project members."),
			card("/users", "Users", "Accounts of your organization."),
		),
	)
}
