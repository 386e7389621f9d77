package ui

import (
	"context"
	"strconv"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/views"
)

type column[T any] struct {
	title string
	value func(T) string
	href  func(T) string
}

type fieldKind int

const (
	textField fieldKind = iota
	passwordField
	dateField
	enumField
	refField
)

type field[In any] struct {
	label   string
	kind    fieldKind
	choices []string
	options func() []views.Option
	get     func(In) string
	set     func(*In, string)
}

// reference is a collection a form depends on. The form is replaced by a
// message while it is missing or empty.
type reference interface {
	Load(ctx context.Context) error
	Status() views.Status
	Blocked() bool
	BlockMessage(target string) string
	FailMessage() string
}

// entityView renders one list/form screen. Pages own one and forward their
// lifecycle to it.
type entityView[T, In any] struct {
	title    string
	singular string
	screen   *views.Screen[T, In]
	columns  []column[T]
	fields   []field[In]
	refs     []reference

	ctx    context.Context
	cancel context.CancelFunc
}

func newEntityView[T, In any](title string, res views.Resource[T, In]) *entityView[T, In] {
	ctx, cancel := context.WithCancel(context.Background())
	return &entityView[T, In]{title: title, singular: res.Singular, screen: views.NewScreen(res), ctx: ctx, cancel: cancel}
}

// mount loads the list and the references. Requests still in flight when
// the page goes away are cancelled by dismount.
func (v *entityView[T, In]) mount(ctx app.Context) {
	ctx.Async(func() {
		v.screen.List.Load(v.ctx)
		for _, r := range v.refs {
			r.Load(v.ctx)
		}
		ctx.Dispatch(func(app.Context) {})
	})
}

func (v *entityView[T, In]) dismount() {
	v.cancel()
}

func (v *entityView[T, In]) submit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	ctx.Async(func() {
		v.screen.Form.Submit(v.ctx)
		ctx.Dispatch(func(app.Context) {})
	})
}

func (v *entityView[T, In]) render() app.UI {
	return app.Div().Class("page").Body(
		app.H1().Text(v.title),
		v.renderForm(),
		v.renderList(),
	)
}

func (v *entityView[T, In]) renderList() app.UI {
	list := v.screen.List
	if msg := list.Message(); msg != "" || list.Status() != views.Ready {
		return app.P().Class("muted").Text(msg)
	}
	rows := list.Rows()
	return app.Table().Class("table").Body(
		app.THead().Body(app.Tr().Body(
			app.Range(v.columns).Slice(func(i int) app.UI {
				return app.Th().Text(v.columns[i].title)
			}),
		)),
		app.TBody().Body(
			app.Range(rows).Slice(func(i int) app.UI {
				return app.Tr().Body(
					app.Range(v.columns).Slice(func(j int) app.UI {
						col := v.columns[j]
						if col.href != nil {
							return app.Td().Body(app.A().Href(col.href(rows[i])).Text(col.value(rows[i])))
						}
						return app.Td().Text(col.value(rows[i]))
					}),
				)
			}),
		),
	)
}

func (v *entityView[T, In]) renderForm() app.UI {
	for _, r := range v.refs {
		switch {
		case r.Status() == views.Loading:
			return app.P().Class("muted").Text("Loading form...")
		case r.Status() == views.Failed:
			return app.P().Class("error").Text(r.FailMessage())
		case r.Blocked():
			return app.P().Class("notice").Text(r.BlockMessage(v.singular))
		}
	}

	return formCard(v.singular, v.screen.Form, v.fields, v.submit)
}

// formCard renders a creation form for the given fields.
func formCard[T, In any](singular string, form *views.Form[T, In], fields []field[In], onSubmit app.EventHandler) app.UI {
	values := form.Values()
	return app.Form().Class("card entity-form").OnSubmit(onSubmit).Body(
		app.H2().Text("Create "+singular),
		app.Range(fields).Slice(func(i int) app.UI {
			return renderField(form, fields[i], values)
		}),
		app.If(form.Error() != "", func() app.UI {
			return app.P().Class("error").Text(form.Error())
		}),
		app.Button().
			Class("btn btn-primary").
			Type("submit").
			Disabled(form.Pending()).
			Text("Create"),
	)
}

func renderField[T, In any](form *views.Form[T, In], f field[In], values In) app.UI {
	onChange := func(ctx app.Context, e app.Event) {
		val := ctx.JSSrc().Get("value").String()
		form.Update(func(in *In) { f.set(in, val) })
	}
	current := f.get(values)

	var input app.UI
	switch f.kind {
	case enumField:
		input = app.Select().OnChange(onChange).Body(
			app.Range(f.choices).Slice(func(i int) app.UI {
				return app.Option().Value(f.choices[i]).Selected(f.choices[i] == current).Text(f.choices[i])
			}),
		)
	case refField:
		opts := f.options()
		input = app.Select().OnChange(onChange).Body(
			app.Option().Value("").Selected(current == "" || current == "0").Text("Select..."),
			app.Range(opts).Slice(func(i int) app.UI {
				id := strconv.FormatInt(opts[i].ID, 10)
				return app.Option().Value(id).Selected(id == current).Text(opts[i].Label)
			}),
		)
	default:
		typ := "text"
		switch f.kind {
		case passwordField:
			typ = "password"
		case dateField:
			typ = "date"
		}
		input = app.Input().Type(typ).Value(current).OnInput(onChange)
	}

	return app.Label().Class("field").Body(
		app.Span().Text(f.label),
		input,
	)
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func optionalDate(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func setOptionalDate(p **string, v string) {
	if v == "" {
		*p = nil
		return
	}
	*p = &v
}
