// Package fsm holds helpers for state machines built on looplab/fsm.
package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Action is a transition callback that can fail.
type Action func(ctx context.Context, e *fsm.Event) error

// WrapEvent adapts an Action to a fsm.Callback. A returned error is stored
// on the event, so FSM.Event reports it to the caller.
func WrapEvent(fn Action) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Err = err
		}
	}
}

// IsRealError reports whether err is an actual failure rather than a
// canceled or no-op transition.
func IsRealError(err error) bool {
	if err == nil {
		return false
	}

	var noTransition fsm.NoTransitionError
	var canceled fsm.CanceledError

	return !errors.As(err, &noTransition) && !errors.As(err, &canceled)
}
