package ui

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/models"
	"github.com/kidandcat/motk/internal/views"
)

func organizationOptions(ref *views.Reference[models.Organization]) func() []views.Option {
	return func() []views.Option {
		var out []views.Option
		for _, o := range ref.Rows() {
			out = append(out, views.Option{ID: o.ID, Label: o.Name})
		}
		return out
	}
}

func projectOptions(ref *views.Reference[models.Project]) func() []views.Option {
	return func() []views.Option {
		var out []views.Option
		for _, p := range ref.Rows() {
			out = append(out, views.Option{ID: p.ID, Label: p.Name})
		}
		return out
	}
}

func idText(id int64) string { return fmt.Sprint(id) }

// Organizations

type OrganizationsPage struct {
	app.Compo
	Deps *Deps

	view *entityView[models.Organization, models.OrganizationCreate]
}

func (p *OrganizationsPage) OnInit() {
	v := newEntityView("Organizations", views.Organizations(p.Deps.API))
	v.columns = []column[models.Organization]{
		{title: "ID", value: func(o models.Organization) string { return idText(o.ID) }},
		{title: "Name", value: func(o models.Organization) string { return o.Name }},
		{title: "Status", value: func(o models.Organization) string { return o.Status }},
	}
	v.fields = []field[models.OrganizationCreate]{
		{label: "Name", get: func(in models.OrganizationCreate) string { return in.Name },
			set: func(in *models.OrganizationCreate, s string) { in.Name = s }},
		{label: "Status", kind: enumField, choices: models.OrganizationStatuses,
			get: func(in models.OrganizationCreate) string { return in.Status },
			set: func(in *models.OrganizationCreate, s string) { in.Status = s }},
	}
	p.view = v
}

func (p *OrganizationsPage) OnMount(ctx app.Context) { p.view.mount(ctx) }
func (p *OrganizationsPage) OnDismount()             { p.view.dismount() }
func (p *OrganizationsPage) Render() app.UI          { return p.view.render() }

// Projects

type ProjectsPage struct {
	app.Compo
	Deps *Deps

	view *entityView[models.Project, models.ProjectCreate]
}

func (p *ProjectsPage) OnInit() {
	orgs := views.OrganizationChoices(p.Deps.API)
	v := newEntityView("Projects", views.Projects(p.Deps.API))
	v.refs = []reference{orgs}
	v.columns = []column[models.Project]{
		{title: "ID", value: func(pr models.Project) string { return idText(pr.ID) }},
		{title: "Name", value: func(pr models.Project) string { return pr.Name },
			href: func(pr models.Project) string { return fmt.Sprintf("/projects/%d", pr.ID) }},
		{title: "Status", value: func(pr models.Project) string { return pr.Status }},
		{title: "Start", value: func(pr models.Project) string { return optionalDate(pr.StartDate) }},
		{title: "End", value: func(pr models.Project) string { return optionalDate(pr.EndDate) }},
	}
	v.fields = []field[models.ProjectCreate]{
		{label: "Name", get: func(in models.ProjectCreate) string { return in.Name },
			set: func(in *models.ProjectCreate, s string) { in.Name = s }},
		{label: "Organization", kind: refField, options: organizationOptions(orgs),
			get: func(in models.ProjectCreate) string { return formatID(in.OrganizationID) },
			set: func(in *models.ProjectCreate, s string) { in.OrganizationID = parseID(s) }},
		{label: "Status", kind: enumField, choices: models.ProjectStatuses,
			get: func(in models.ProjectCreate) string { return in.Status },
			set: func(in *models.ProjectCreate, s string) { in.Status = s }},
		{label: "Start date", kind: dateField, get: func(in models.ProjectCreate) string { return optionalDate(in.StartDate) },
			set: func(in *models.ProjectCreate, s string) { setOptionalDate(&in.StartDate, s) }},
		{label: "End date", kind: dateField, get: func(in models.ProjectCreate) string { return optionalDate(in.EndDate) },
			set: func(in *models.ProjectCreate, s string) { setOptionalDate(&in.EndDate, s) }},
	}
	p.view = v
}

func (p *ProjectsPage) OnMount(ctx app.Context) { p.view.mount(ctx) }
func (p *ProjectsPage) OnDismount()             { p.view.dismount() }
func (p *ProjectsPage) Render() app.UI          { return p.view.render() }

// Shots

type ShotsPage struct {
	app.Compo
	Deps *Deps

	view *entityView[models.Shot, models.ShotCreate]
}

func (p *ShotsPage) OnInit() {
	projects := views.ProjectChoices(p.Deps.API)
	v := newEntityView("Shots", views.Shots(p.Deps.API))
	v.refs = []reference{projects}
	v.columns = []column[models.Shot]{
		{title: "ID", value: func(s models.Shot) string { return idText(s.ID) }},
		{title: "Name", value: func(s models.Shot) string { return s.Name }},
		{title: "Status", value: func(s models.Shot) string { return s.Status }},
		{title: "Project", value: func(s models.Shot) string { return idText(s.ProjectID) },
			href: func(s models.Shot) string { return fmt.Sprintf("/projects/%d", s.ProjectID) }},
	}
	v.fields = []field[models.ShotCreate]{
		{label: "Name", get: func(in models.ShotCreate) string { return in.Name },
			set: func(in *models.ShotCreate, s string) { in.Name = s }},
		{label: "Project", kind: refField, options: projectOptions(projects),
			get: func(in models.ShotCreate) string { return formatID(in.ProjectID) },
			set: func(in *models.ShotCreate, s string) { in.ProjectID = parseID(s) }},
		{label: "Status", kind: enumField, choices: models.ShotStatuses,
			get: func(in models.ShotCreate) string { return in.Status },
			set: func(in *models.ShotCreate, s string) { in.Status = s }},
	}
	p.view = v
}

func (p *ShotsPage) OnMount(ctx app.Context) { p.view.mount(ctx) }
func (p *ShotsPage) OnDismount()             { p.view.dismount() }
func (p *ShotsPage) Render() app.UI          { return p.view.render() }

// Assets

type AssetsPage struct {
	app.Compo
	Deps *Deps

	view *entityView[models.Asset, models.AssetCreate]
}

func (p *AssetsPage) OnInit() {
	projects := views.ProjectChoices(p.Deps.API)
	v := newEntityView("Assets", views.Assets(p.Deps.API))
	v.refs = []reference{projects}
	v.columns = []column[models.Asset]{
		{title: "ID", value: func(a models.Asset) string { return idText(a.ID) }},
		{title: "Name", value: func(a models.Asset) string { return a.Name }},
		{title: "Type", value: func(a models.Asset) string { return a.AssetType }},
		{title: "Status", value: func(a models.Asset) string { return a.Status }},
		{title: "Project", value: func(a models.Asset) string { return idText(a.ProjectID) },
			href: func(a models.Asset) string { return fmt.Sprintf("/projects/%d", a.ProjectID) }},
	}
	v.fields = []field[models.AssetCreate]{
		{label: "Name", get: func(in models.AssetCreate) string { return in.Name },
			set: func(in *models.AssetCreate, s string) { in.Name = s }},
		{label: "Type", get: func(in models.AssetCreate) string { return in.AssetType },
			set: func(in *models.AssetCreate, s string) { in.AssetType = s }},
		{label: "Project", kind: refField, options: projectOptions(projects),
			get: func(in models.AssetCreate) string { return formatID(in.ProjectID) },
			set: func(in *models.AssetCreate, s string) { in.ProjectID = parseID(s) }},
		{label: "Status", kind: enumField, choices: models.ShotStatuses,
			get: func(in models.AssetCreate) string { return in.Status },
			set: func(in *models.AssetCreate, s string) { in.Status = s }},
	}
	p.view = v
}

func (p *AssetsPage) OnMount(ctx app.Context) { p.view.mount(ctx) }
func (p *AssetsPage) OnDismount()             { p.view.dismount() }
func (p *AssetsPage) Render() app.UI          { return p.view.render() }

// Users

type UsersPage struct {
	app.Compo
	Deps *Deps

	view *entityView[models.Account, models.AccountCreate]
}

func (p *UsersPage) OnInit() {
	orgs := views.OrganizationChoices(p.Deps.API)
	v := newEntityView("Users", views.Users(p.Deps.API))
	v.refs = []reference{orgs}
	v.columns = []column[models.Account]{
		{title: "ID", value: func(a models.Account) string { return idText(a.ID) }},
		{title: "Account", value: func(a models.Account) string { return a.AccountName }},
		{title: "Name", value: func(a models.Account) string { return a.DisplayName }},
		{title: "Type", value: func(a models.Account) string { return a.AccountType }},
	}
	v.fields = []field[models.AccountCreate]{
		{label: "Account name", get: func(in models.AccountCreate) string { return in.AccountName },
			set: func(in *models.AccountCreate, s string) { in.AccountName = s }},
		{label: "Display name", get: func(in models.AccountCreate) string { return in.DisplayName },
			set: func(in *models.AccountCreate, s string) { in.DisplayName = s }},
		{label: "Password", kind: passwordField, get: func(in models.AccountCreate) string { return in.Password },
			set: func(in *models.AccountCreate, s string) { in.Password = s }},
		{label: "Account type", kind: enumField, choices: models.AccountTypes,
			get: func(in models.AccountCreate) string { return in.AccountType },
			set: func(in *models.AccountCreate, s string) { in.AccountType = s }},
		{label: "Organization", kind: refField, options: organizationOptions(orgs),
			get: func(in models.AccountCreate) string { return formatID(in.OrganizationID) },
			set: func(in *models.AccountCreate, s string) { in.OrganizationID = parseID(s) }},
	}
	p.view = v
}

func (p *UsersPage) OnMount(ctx app.Context) { p.view.mount(ctx) }
func (p *UsersPage) OnDismount()             { p.view.dismount() }
func (p *UsersPage) Render() app.UI          { return p.view.render() }
