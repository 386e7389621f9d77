// Package views holds the state machines behind every screen of the
// dashboard. Rendering lives in the app package; everything here is plain Go
// so it runs the same in the browser, the CLI and tests.
package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kidandcat/motk/internal/apiclient"
)

type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// List is one collection fetched in full from the server. Every Load
// replaces the rows; there is no merge and no retry.
type List[T any] struct {
	name  string
	fetch func(ctx context.Context) ([]T, error)

	mu     sync.RWMutex
	seq    int
	status Status
	rows   []T
	err    error
}

// NewList returns a list in the Loading state. name is the plural used in
// messages, e.g. "shots".
func NewList[T any](name string, fetch func(ctx context.Context) ([]T, error)) *List[T] {
	return &List[T]{name: name, fetch: fetch}
}

// Load issues exactly one read. A load whose ctx is cancelled, or that was
// overtaken by a newer load, leaves the list as it was.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	prev := l.status
	l.status = Loading
	l.mu.Unlock()

	rows, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return err
	}
	if ctx.Err() != nil {
		l.status = prev
		return ctx.Err()
	}
	if err != nil {
		l.status = Failed
		l.rows = nil
		l.err = err
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	l.status = Ready
	l.rows = rows
	l.err = nil
	return nil
}

func (l *List[T]) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Rows returns a copy of the last successful load.
func (l *List[T]) Rows() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.rows...)
}

func (l *List[T]) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Empty reports a successful load that returned no rows.
func (l *List[T]) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status == Ready && len(l.rows) == 0
}

func (l *List[T]) Name() string {
	return l.name
}

// Message is the banner text for the current state, or "" when there is
// nothing to say.
func (l *List[T]) Message() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.status {
	case Loading:
		return fmt.Sprintf("Loading %s...", l.name)
	case Failed:
		if errors.Is(l.err, apiclient.ErrUnauthorized) {
			return ""
		}
		return fmt.Sprintf("Failed to load %s. Please check the backend server and network connection.", l.name)
	}
	if len(l.rows) == 0 {
		return fmt.Sprintf("No %s found.", l.name)
	}
	return ""
}
