package views

import (
	"context"
	"fmt"
	"strings"
)

// Reference is a collection a form loads to fill a selection input, such as
// the projects offered by the shot form.
type Reference[T any] struct {
	list     *List[T]
	singular string
	page     string
}

// NewReference wraps fetch. singular and page name the entity and the screen
// where it is created, for the blocking message.
func NewReference[T any](name, singular, page string, fetch func(ctx context.Context) ([]T, error)) *Reference[T] {
	return &Reference[T]{list: NewList(name, fetch), singular: singular, page: page}
}

func (r *Reference[T]) Load(ctx context.Context) error { return r.list.Load(ctx) }
func (r *Reference[T]) Status() Status                 { return r.list.Status() }
func (r *Reference[T]) Rows() []T                      { return r.list.Rows() }

// Blocked reports a loaded but empty collection. The form then shows
// BlockMessage instead of its inputs.
func (r *Reference[T]) Blocked() bool {
	return r.list.Empty()
}

func (r *Reference[T]) BlockMessage(target string) string {
	return fmt.Sprintf("Please create at least one %s in the %s page before creating %s.", r.singular, r.page, article(target))
}

// FailMessage is shown when the collection could not be loaded.
func (r *Reference[T]) FailMessage() string {
	return fmt.Sprintf("Failed to load %s for selection. Please create at least one %s first.", r.list.Name(), r.singular)
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}
