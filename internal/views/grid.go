package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/models"
)

// RowState tracks one grid row through an inline edit.
type RowState int

const (
	RowClean RowState = iota
	RowEditing
	RowSubmitted
	RowReverted
)

func (s RowState) String() string {
	return [...]string{"clean", "editing", "submitted", "reverted"}[s]
}

// Editable shot columns.
const (
	FieldName   = "name"
	FieldStatus = "status"
)

type shotWriter interface {
	UpdateShot(ctx context.Context, id int64, in models.ShotUpdate) (models.Shot, error)
	DeleteShot(ctx context.Context, id int64) error
}

// Grid is the shots table with inline edit and delete. Every change is
// committed at once and followed by a full reload; the server copy always
// wins and there is no version check.
type Grid struct {
	api    shotWriter
	rows   func() []models.Shot
	reload func(ctx context.Context) error

	// OnAlert receives the message of a rejected edit or delete.
	OnAlert func(msg string)

	mu     sync.Mutex
	states map[int64]RowState
}

func NewGrid(api shotWriter, rows func() []models.Shot, reload func(ctx context.Context) error) *Grid {
	return &Grid{api: api, rows: rows, reload: reload, states: map[int64]RowState{}}
}

func (g *Grid) State(id int64) RowState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[id]
}

// Begin marks a row as being edited locally.
func (g *Grid) Begin(id int64) {
	g.setState(id, RowEditing)
}

// Edit commits a single field of row id. An unchanged value is dropped
// without a request.
func (g *Grid) Edit(ctx context.Context, id int64, field, value string) error {
	row, ok := g.find(id)
	if !ok {
		return fmt.Errorf("shot %d is not in the grid", id)
	}

	var upd models.ShotUpdate
	switch field {
	case FieldName:
		if value == row.Name {
			g.setState(id, RowClean)
			return nil
		}
		upd.Name = &value
	case FieldStatus:
		if value == row.Status {
			g.setState(id, RowClean)
			return nil
		}
		upd.Status = &value
	default:
		return fmt.Errorf("column %q is not editable", field)
	}

	g.setState(id, RowSubmitted)
	if _, err := g.api.UpdateShot(ctx, id, upd); err != nil {
		g.setState(id, RowReverted)
		g.alert(err, "update")
		return errors.Join(err, g.reload(ctx))
	}
	g.setState(id, RowClean)
	return g.reload(ctx)
}

// Delete removes row id at once. There is no confirmation and no undo.
func (g *Grid) Delete(ctx context.Context, id int64) error {
	err := g.api.DeleteShot(ctx, id)
	if err != nil {
		g.alert(err, "delete")
	} else {
		g.mu.Lock()
		delete(g.states, id)
		g.mu.Unlock()
	}
	return errors.Join(err, g.reload(ctx))
}

func (g *Grid) find(id int64) (models.Shot, bool) {
	for _, s := range g.rows() {
		if s.ID == id {
			return s, true
		}
	}
	return models.Shot{}, false
}

func (g *Grid) setState(id int64, s RowState) {
	g.mu.Lock()
	g.states[id] = s
	g.mu.Unlock()
}

func (g *Grid) alert(err error, verb string) {
	if g.OnAlert == nil || errors.Is(err, apiclient.ErrUnauthorized) {
		return
	}
	if d := apiclient.Detail(err); d != "" {
		g.OnAlert(fmt.Sprintf("Failed to %s shot: %s", verb, d))
		return
	}
	g.OnAlert(fmt.Sprintf("Failed to %s shot. Please try again.", verb))
}
