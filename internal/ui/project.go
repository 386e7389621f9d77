package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/models"
	"github.com/kidandcat/motk/internal/views"
)

// ProjectPage shows one project with its shots grid and the assets, tasks
// and members tabs.
type ProjectPage struct {
	app.Compo
	Deps *Deps
	ID   int64

	detail   *views.ProjectDetail
	accounts *views.Reference[models.Account]
	taskForm *taskForm
	editing  string
	ctx      context.Context
	cancel   context.CancelFunc
}

func (p *ProjectPage) OnInit() {
	p.build()
}

func (p *ProjectPage) build() {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.editing = ""
	p.detail = views.NewProjectDetail(p.Deps.API, p.ID)
	p.detail.Shots.OnAlert = func(msg string) {
		app.Window().Call("alert", msg)
	}
	p.accounts = views.NewReference("users", "user", "Users", p.Deps.API.Users)

	d := p.detail
	p.taskForm = &taskForm{
		form: d.TaskForm,
		links: func(t views.LinkType) []views.Option {
			pr := d.Project()
			return views.LinkOptions(t, pr.Shots, pr.Assets)
		},
		members: func() []views.Option { return views.MemberOptions(d.Project().Members) },
		deps:    func() []models.Task { return views.DependencyOptions(d.Tasks(), 0) },
		blocked: d.TaskBlocked,
	}
}

func (p *ProjectPage) OnMount(ctx app.Context) {
	p.load(ctx)
}

// OnUpdate follows navigation between two projects.
func (p *ProjectPage) OnUpdate(ctx app.Context) {
	if p.detail != nil && p.detail.ID == p.ID {
		return
	}
	p.cancel()
	p.build()
	p.load(ctx)
}

func (p *ProjectPage) OnDismount() {
	p.cancel()
}

func (p *ProjectPage) load(ctx app.Context) {
	c := p.ctx
	ctx.Async(func() {
		p.detail.Load(c)
		p.accounts.Load(c)
		ctx.Dispatch(func(app.Context) {})
	})
}

func (p *ProjectPage) run(ctx app.Context, fn func(c context.Context)) {
	c := p.ctx
	ctx.Async(func() {
		fn(c)
		ctx.Dispatch(func(app.Context) {})
	})
}

func (p *ProjectPage) Render() app.UI {
	if msg := p.detail.Message(); msg != "" || p.detail.Status() != views.Ready {
		return app.Div().Class("page").Body(
			app.P().Class(bannerClass(msg)).Text(msg),
		)
	}

	pr := p.detail.Project()
	dates := ""
	if pr.StartDate != nil || pr.EndDate != nil {
		dates = fmt.Sprintf("%s to %s", optionalDate(pr.StartDate), optionalDate(pr.EndDate))
	}

	return app.Div().Class("page project").Body(
		app.H1().Text(pr.Name),
		app.P().Class("muted").Text(strings.TrimSpace(pr.Status+" "+dates)),
		p.renderTabs(),
		p.renderTab(pr),
	)
}

func bannerClass(msg string) string {
	if strings.HasPrefix(msg, "Error:") {
		return "error"
	}
	return "muted"
}

var tabLabels = map[views.Tab]string{
	views.TabShots:   "Shots",
	views.TabAssets:  "Assets",
	views.TabTasks:   "Tasks",
	views.TabMembers: "Members",
}

func (p *ProjectPage) renderTabs() app.UI {
	current := p.detail.Tab()
	return app.Div().Class("tabs").Body(
		app.Range(views.Tabs).Slice(func(i int) app.UI {
			tab := views.Tabs[i]
			cls := "tab"
			if tab == current {
				cls += " active"
			}
			return app.Button().Class(cls).Text(tabLabels[tab]).OnClick(func(ctx app.Context, e app.Event) {
				p.detail.SetTab(tab)
			})
		}),
	)
}

func (p *ProjectPage) renderTab(pr models.ProjectDetails) app.UI {
	switch p.detail.Tab() {
	case views.TabAssets:
		return app.Div().Body(
			formCard("asset", p.detail.AssetForm, assetFields, p.submit(func(c context.Context) { p.detail.AssetForm.Submit(c) })),
			assetTable(pr.Assets),
		)
	case views.TabTasks:
		return app.Div().Body(
			p.taskForm.render(p.ctx),
			taskTable(p.detail.Tasks()),
		)
	case views.TabMembers:
		return app.Div().Body(
			formCard("member", p.detail.MemberForm, p.memberFields(), p.submit(func(c context.Context) { p.detail.MemberForm.Submit(c) })),
			memberTable(pr.Members),
		)
	}
	return app.Div().Body(
		formCard("shot", p.detail.ShotForm, shotFields, p.submit(func(c context.Context) { p.detail.ShotForm.Submit(c) })),
		p.renderGrid(pr.Shots),
	)
}

func (p *ProjectPage) submit(fn func(c context.Context)) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		e.PreventDefault()
		p.run(ctx, fn)
	}
}

var shotFields = []field[models.ShotCreate]{
	{label: "Name", get: func(in models.ShotCreate) string { return in.Name },
		set: func(in *models.ShotCreate, s string) { in.Name = s }},
	{label: "Status", kind: enumField, choices: models.ShotStatuses,
		get: func(in models.ShotCreate) string { return in.Status },
		set: func(in *models.ShotCreate, s string) { in.Status = s }},
}

var assetFields = []field[models.AssetCreate]{
	{label: "Name", get: func(in models.AssetCreate) string { return in.Name },
		set: func(in *models.AssetCreate, s string) { in.Name = s }},
	{label: "Type", get: func(in models.AssetCreate) string { return in.AssetType },
		set: func(in *models.AssetCreate, s string) { in.AssetType = s }},
	{label: "Status", kind: enumField, choices: models.ShotStatuses,
		get: func(in models.AssetCreate) string { return in.Status },
		set: func(in *models.AssetCreate, s string) { in.Status = s }},
}

func (p *ProjectPage) memberFields() []field[models.ProjectMemberCreate] {
	return []field[models.ProjectMemberCreate]{
		{label: "Display name", get: func(in models.ProjectMemberCreate) string { return in.DisplayName },
			set: func(in *models.ProjectMemberCreate, s string) { in.DisplayName = s }},
		{label: "Department", get: func(in models.ProjectMemberCreate) string { return in.Department },
			set: func(in *models.ProjectMemberCreate, s string) { in.Department = s }},
		{label: "Role", get: func(in models.ProjectMemberCreate) string { return in.Role },
			set: func(in *models.ProjectMemberCreate, s string) { in.Role = s }},
		{label: "Account", kind: refField,
			options: func() []views.Option {
				var out []views.Option
				for _, a := range p.accounts.Rows() {
					out = append(out, views.Option{ID: a.ID, Label: a.DisplayName + " (" + a.AccountName + ")"})
				}
				return out
			},
			get: func(in models.ProjectMemberCreate) string {
				if in.AccountID == nil {
					return ""
				}
				return formatID(*in.AccountID)
			},
			set: func(in *models.ProjectMemberCreate, s string) {
				if id := parseID(s); id != 0 {
					in.AccountID = &id
					return
				}
				in.AccountID = nil
			}},
	}
}

// Shots grid

func editKey(id int64, field string) string {
	return fmt.Sprintf("shot-%d-%s", id, field)
}

// commitName reads the open editor and sends its value. Enter and blur both
// land here; only the first one counts.
func (p *ProjectPage) commitName(ctx app.Context, id int64) {
	key := editKey(id, views.FieldName)
	if p.editing != key {
		return
	}
	p.editing = ""
	el := app.Window().GetElementByID(key)
	if !el.Truthy() {
		return
	}
	value := strings.TrimSpace(el.Get("value").String())
	p.run(ctx, func(c context.Context) { p.detail.Shots.Edit(c, id, views.FieldName, value) })
}

func (p *ProjectPage) cancelEdit(id int64, current string) {
	p.editing = ""
	p.detail.Shots.Edit(p.ctx, id, views.FieldName, current)
}

func (p *ProjectPage) renderGrid(shots []models.Shot) app.UI {
	if len(shots) == 0 {
		return app.P().Class("muted").Text("No shots found.")
	}
	grid := p.detail.Shots

	return app.Table().Class("table grid").Body(
		app.THead().Body(app.Tr().Body(
			app.Th().Text("ID"),
			app.Th().Text("Name"),
			app.Th().Text("Status"),
			app.Th(),
		)),
		app.TBody().Body(
			app.Range(shots).Slice(func(i int) app.UI {
				sh := shots[i]
				key := editKey(sh.ID, views.FieldName)

				cls := ""
				switch grid.State(sh.ID) {
				case views.RowSubmitted:
					cls = "row-saving"
				case views.RowReverted:
					cls = "row-reverted"
				}

				return app.Tr().Class(cls).Body(
					app.Td().Text(idText(sh.ID)),
					app.If(p.editing == key, func() app.UI {
						return app.Td().Body(
							app.Input().
								ID(key).
								Class("cell-editor").
								Value(sh.Name).
								AutoFocus(true).
								OnBlur(func(ctx app.Context, e app.Event) {
									p.commitName(ctx, sh.ID)
								}).
								OnKeyDown(func(ctx app.Context, e app.Event) {
									switch e.Get("key").String() {
									case "Enter":
										e.PreventDefault()
										p.commitName(ctx, sh.ID)
									case "Escape":
										p.cancelEdit(sh.ID, sh.Name)
									}
								}),
						)
					}).Else(func() app.UI {
						return app.Td().
							Class("cell-editable").
							Title("Double-click to edit").
							Text(sh.Name).
							OnDblClick(func(ctx app.Context, e app.Event) {
								grid.Begin(sh.ID)
								p.editing = key
							})
					}),
					app.Td().Body(
						app.Select().
							OnChange(func(ctx app.Context, e app.Event) {
								value := ctx.JSSrc().Get("value").String()
								grid.Begin(sh.ID)
								p.run(ctx, func(c context.Context) { grid.Edit(c, sh.ID, views.FieldStatus, value) })
							}).
							Body(
								app.Range(models.ShotStatuses).Slice(func(j int) app.UI {
									s := models.ShotStatuses[j]
									return app.Option().Value(s).Selected(s == sh.Status).Text(s)
								}),
							),
					),
					app.Td().Body(
						app.Button().
							Class("btn btn-danger").
							Text("Delete").
							OnClick(func(ctx app.Context, e app.Event) {
								p.run(ctx, func(c context.Context) { grid.Delete(c, sh.ID) })
							}),
					),
				)
			}),
		),
	)
}

func assetTable(assets []models.Asset) app.UI {
	if len(assets) == 0 {
		return app.P().Class("muted").Text("No assets found.")
	}
	return app.Table().Class("table").Body(
		app.THead().Body(app.Tr().Body(
			app.Th().Text("ID"),
			app.Th().Text("Name"),
			app.Th().Text("Type"),
			app.Th().Text("Status"),
		)),
		app.TBody().Body(
			app.Range(assets).Slice(func(i int) app.UI {
				a := assets[i]
				return app.Tr().Body(
					app.Td().Text(idText(a.ID)),
					app.Td().Text(a.Name),
					app.Td().Text(a.AssetType),
					app.Td().Text(a.Status),
				)
			}),
		),
	)
}

func memberTable(members []models.ProjectMember) app.UI {
	if len(members) == 0 {
		return app.P().Class("muted").Text("No members found.")
	}
	return app.Table().Class("table").Body(
		app.THead().Body(app.Tr().Body(
			app.Th().Text("ID"),
			app.Th().Text("Name"),
			app.Th().Text("Department"),
			app.Th().Text("Role"),
			app.Th().Text("Account"),
		)),
		app.TBody().Body(
			app.Range(members).Slice(func(i int) app.UI {
				m := members[i]
				account := ""
				if m.Account != nil {
					account = m.Account.AccountName
				}
				return app.Tr().Body(
					app.Td().Text(idText(m.ID)),
					app.Td().Text(m.DisplayName),
					app.Td().Text(m.Department),
					app.Td().Text(m.Role),
					app.Td().Text(account),
				)
			}),
		),
	)
}
