package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/models"
	"github.com/kidandcat/motk/internal/views"
)

// taskForm renders a TaskDraft form. The project page and the tasks page
// feed it different choices.
type taskForm struct {
	form    *views.Form[models.Task, views.TaskDraft]
	links   func(views.LinkType) []views.Option
	members func() []views.Option
	deps    func() []models.Task
	blocked func() string

	// onParent runs after the parent selection changed.
	onParent func(ctx app.Context, d views.TaskDraft)
}

func (f *taskForm) submit(pageCtx context.Context) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		e.PreventDefault()
		ctx.Async(func() {
			f.form.Submit(pageCtx)
			ctx.Dispatch(func(app.Context) {})
		})
	}
}

func (f *taskForm) render(pageCtx context.Context) app.UI {
	d := f.form.Values()
	blocked := f.blocked()
	value := func(ctx app.Context) string { return ctx.JSSrc().Get("value").String() }

	links := f.links(d.LinkType)
	members := f.members()
	deps := f.deps()

	return app.Form().Class("card entity-form").OnSubmit(f.submit(pageCtx)).Body(
		app.H2().Text("Create task"),
		app.If(blocked != "", func() app.UI {
			return app.P().Class("notice").Text(blocked)
		}),
		app.Label().Class("field").Body(
			app.Span().Text("Name"),
			app.Input().Type("text").Value(d.Name).OnInput(func(ctx app.Context, e app.Event) {
				v := value(ctx)
				f.form.Update(func(in *views.TaskDraft) { in.Name = v })
			}),
		),
		app.Label().Class("field").Body(
			app.Span().Text("Status"),
			app.Select().OnChange(func(ctx app.Context, e app.Event) {
				v := value(ctx)
				f.form.Update(func(in *views.TaskDraft) { in.Status = v })
			}).Body(
				app.Range(models.TaskStatuses).Slice(func(i int) app.UI {
					s := models.TaskStatuses[i]
					return app.Option().Value(s).Selected(s == d.Status).Text(s)
				}),
			),
		),
		app.Label().Class("field").Body(
			app.Span().Text("Link to"),
			app.Select().OnChange(func(ctx app.Context, e app.Event) {
				v := views.LinkType(value(ctx))
				f.form.Update(func(in *views.TaskDraft) {
					in.SetLinkType(v)
					in.AssignedToID = 0
				})
				if f.onParent != nil {
					f.onParent(ctx, f.form.Values())
				}
			}).Body(
				app.Option().Value(string(views.LinkShot)).Selected(d.LinkType == views.LinkShot).Text("Shot"),
				app.Option().Value(string(views.LinkAsset)).Selected(d.LinkType == views.LinkAsset).Text("Asset"),
			),
		),
		app.Label().Class("field").Body(
			app.Span().Text("Parent"),
			app.Select().OnChange(func(ctx app.Context, e app.Event) {
				id := parseID(value(ctx))
				f.form.Update(func(in *views.TaskDraft) {
					in.LinkID = id
					in.AssignedToID = 0
				})
				if f.onParent != nil {
					f.onParent(ctx, f.form.Values())
				}
			}).Body(
				app.Option().Value("").Selected(d.LinkID == 0).Text("Select..."),
				app.Range(links).Slice(func(i int) app.UI {
					return app.Option().Value(formatID(links[i].ID)).Selected(links[i].ID == d.LinkID).Text(links[i].Label)
				}),
			),
		),
		app.Label().Class("field").Body(
			app.Span().Text("Assigned to"),
			app.Select().OnChange(func(ctx app.Context, e app.Event) {
				id := parseID(value(ctx))
				f.form.Update(func(in *views.TaskDraft) { in.AssignedToID = id })
			}).Body(
				app.Option().Value("").Selected(d.AssignedToID == 0).Text("Select..."),
				app.Range(members).Slice(func(i int) app.UI {
					return app.Option().Value(formatID(members[i].ID)).Selected(members[i].ID == d.AssignedToID).Text(members[i].Label)
				}),
			),
		),
		app.If(len(deps) > 0, func() app.UI {
			return app.FieldSet().Class("field deps").Body(
				app.Legend().Text("Depends on"),
				app.Range(deps).Slice(func(i int) app.UI {
					t := deps[i]
					return app.Label().Class("checkbox").Body(
						app.Input().
							Type("checkbox").
							Checked(slices.Contains(d.Dependencies, t.ID)).
							OnChange(func(ctx app.Context, e app.Event) {
								f.form.Update(func(in *views.TaskDraft) { in.Dependencies = toggle(in.Dependencies, t.ID) })
							}),
						app.Span().Text(t.Name),
					)
				}),
			)
		}),
		app.If(f.form.Error() != "", func() app.UI {
			return app.P().Class("error").Text(f.form.Error())
		}),
		app.Button().
			Class("btn btn-primary").
			Type("submit").
			Disabled(f.form.Pending() || blocked != "").
			Text("Create"),
	)
}

func toggle(ids []int64, id int64) []int64 {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

func taskTable(tasks []models.Task) app.UI {
	parent := func(t models.Task) string {
		switch {
		case t.ShotID != nil:
			return fmt.Sprintf("Shot #%d", *t.ShotID)
		case t.AssetID != nil:
			return fmt.Sprintf("Asset #%d", *t.AssetID)
		}
		return ""
	}
	assignee := func(t models.Task) string {
		if t.AssignedTo == nil {
			return idText(t.AssignedToID)
		}
		return t.AssignedTo.DisplayName
	}
	depends := func(t models.Task) string {
		parts := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			parts[i] = idText(d)
		}
		return strings.Join(parts, ", ")
	}

	return app.Table().Class("table").Body(
		app.THead().Body(app.Tr().Body(
			app.Th().Text("ID"),
			app.Th().Text("Name"),
			app.Th().Text("Status"),
			app.Th().Text("Parent"),
			app.Th().Text("Assigned to"),
			app.Th().Text("Depends on"),
		)),
		app.TBody().Body(
			app.Range(tasks).Slice(func(i int) app.UI {
				t := tasks[i]
				return app.Tr().Body(
					app.Td().Text(idText(t.ID)),
					app.Td().Text(t.Name),
					app.Td().Text(t.Status),
					app.Td().Text(parent(t)),
					app.Td().Text(assignee(t)),
					app.Td().Text(depends(t)),
				)
			}),
		),
	)
}

// TasksPage lists every visible task. Its form offers all shots and assets
// and, once a parent is chosen, the members of that parent's project.
type TasksPage struct {
	app.Compo
	Deps *Deps

	screen  *views.Screen[models.Task, views.TaskDraft]
	choices *views.TaskChoices
	form    *taskForm
	ctx     context.Context
	cancel  context.CancelFunc
}

func (p *TasksPage) OnInit() {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.screen = views.NewScreen(views.Tasks(p.Deps.API))
	p.choices = views.NewTaskChoices(p.Deps.API)
	p.screen.Form.OnSuccess = func(ctx context.Context) {
		p.screen.List.Load(ctx)
		p.choices.Load(ctx)
	}
	p.form = &taskForm{
		form:    p.screen.Form,
		links:   p.choices.Links,
		members: p.choices.Members,
		deps:    func() []models.Task { return p.choices.Dependencies(0) },
		blocked: p.choices.Blocked,
		onParent: func(ctx app.Context, d views.TaskDraft) {
			ctx.Async(func() {
				p.choices.LoadMembers(p.ctx, d)
				ctx.Dispatch(func(app.Context) {})
			})
		},
	}
}

func (p *TasksPage) OnMount(ctx app.Context) {
	ctx.Async(func() {
		p.screen.List.Load(p.ctx)
		p.choices.Load(p.ctx)
		ctx.Dispatch(func(app.Context) {})
	})
}

func (p *TasksPage) OnDismount() {
	p.cancel()
}

func (p *TasksPage) Render() app.UI {
	list := p.screen.List
	return app.Div().Class("page").Body(
		app.H1().Text("Tasks"),
		p.renderForm(),
		app.If(list.Message() != "" || list.Status() != views.Ready, func() app.UI {
			return app.P().Class("muted").Text(list.Message())
		}).Else(func() app.UI {
			return taskTable(list.Rows())
		}),
	)
}

func (p *TasksPage) renderForm() app.UI {
	switch p.choices.Status() {
	case views.Loading:
		return app.P().Class("muted").Text("Loading form...")
	case views.Failed:
		return app.P().Class("error").Text(p.choices.Blocked())
	}
	return p.form.render(p.ctx)
}
