// Package surface is the narrow boundary between the search automation and
// the external trade interface it drives.
package surface

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a selector matches nothing.
var ErrNotFound = errors.New("control not found")

// Key is a named keyboard key sent to a control.
type Key string

const (
	KeyEnter  Key = "Enter"
	KeyEscape Key = "Escape"
)

// Control is a handle on one element of the external interface.
type Control interface {
	// ID identifies the underlying element; two handles on the same element
	// return the same ID.
	ID() string
	Text(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, bool, error)
	Visible(ctx context.Context) (bool, error)
	// Find returns the first descendant matching selector or ErrNotFound.
	Find(ctx context.Context, selector string) (Control, error)
	FindAll(ctx context.Context, selector string) ([]Control, error)
}

// Surface is everything the validator and the automation engine may do to
// the external interface.
type Surface interface {
	// FindControl returns the first match for selector or ErrNotFound. It
	// does not wait for the element to appear.
	FindControl(ctx context.Context, selector string) (Control, error)
	FindControls(ctx context.Context, selector string) ([]Control, error)
	// Type focuses c, replaces its content and types text.
	Type(ctx context.Context, c Control, text string) error
	Press(ctx context.Context, c Control, key Key) error
	// SelectOption picks an entry from an open option list.
	SelectOption(ctx context.Context, option Control) error
	Click(ctx context.Context, c Control) error
	// WaitSettled gives the interface d to finish reacting to the last mutation.
	WaitSettled(ctx context.Context, d time.Duration) error
}

// Exists reports whether selector matches anything. Lookup errors other
// than ErrNotFound are returned.
func Exists(ctx context.Context, s Surface, selector string) (bool, error) {
	_, err := s.FindControl(ctx, selector)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

// PollUntil calls check every interval until it reports true, the timeout
// elapses or ctx is done. Waiting goes through s.WaitSettled so test doubles
// control time.
func PollUntil(ctx context.Context, s Surface, timeout, interval time.Duration, check func() (bool, error)) (bool, error) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	var waited time.Duration
	for {
		ok, err := check()
		if err != nil || ok {
			return ok, err
		}
		if waited >= timeout {
			return false, nil
		}
		if err := s.WaitSettled(ctx, interval); err != nil {
			return false, err
		}
		waited += interval
	}
}
