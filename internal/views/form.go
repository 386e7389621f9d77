package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kidandcat/motk/internal/apiclient"
)

// ErrPending is returned by Submit while a previous submit of the same form
// is still in flight.
var ErrPending = errors.New("submit already in progress")

// InputError is a client side validation failure. Its text is shown as is.
type InputError string

func (e InputError) Error() string { return string(e) }

// Form owns the field values of one creation form and performs its single
// write.
type Form[T, In any] struct {
	res Resource[T, In]

	// OnSuccess runs after a successful write, once the fields are reset.
	// Parents use it to re-fetch their collection.
	OnSuccess func(ctx context.Context)

	mu      sync.Mutex
	values  In
	pending bool
	err     string
}

func NewForm[T, In any](res Resource[T, In]) *Form[T, In] {
	f := &Form[T, In]{res: res}
	f.values = f.defaults()
	return f
}

func (f *Form[T, In]) defaults() In {
	if f.res.Defaults != nil {
		return f.res.Defaults()
	}
	var zero In
	return zero
}

func (f *Form[T, In]) Values() In {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Update mutates the field values in place.
func (f *Form[T, In]) Update(fn func(in *In)) {
	f.mu.Lock()
	fn(&f.values)
	f.mu.Unlock()
}

func (f *Form[T, In]) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Error is the inline message left by the last failed submit.
func (f *Form[T, In]) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit validates the current values and performs one create call. On
// failure the values are kept so the user can correct them and retry.
func (f *Form[T, In]) Submit(ctx context.Context) (T, error) {
	var zero T

	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return zero, ErrPending
	}
	in := f.values
	f.pending = true
	f.err = ""
	f.mu.Unlock()

	if f.res.Validate != nil {
		if err := f.res.Validate(in); err != nil {
			f.finish(err.Error())
			return zero, err
		}
	}

	out, err := f.res.Create(ctx, in)
	if err != nil {
		f.finish(f.failure(err))
		return zero, err
	}

	f.mu.Lock()
	f.values = f.defaults()
	f.pending = false
	f.mu.Unlock()

	if f.OnSuccess != nil {
		f.OnSuccess(ctx)
	}
	return out, nil
}

func (f *Form[T, In]) finish(msg string) {
	f.mu.Lock()
	f.pending = false
	f.err = msg
	f.mu.Unlock()
}

func (f *Form[T, In]) failure(err error) string {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return ""
	}
	if d := apiclient.Detail(err); d != "" {
		return fmt.Sprintf("Failed to create %s: %s", f.res.Singular, d)
	}
	return fmt.Sprintf("Failed to create %s. Please try again.", f.res.Singular)
}
