package fsm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapEventPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := fsm.NewFSM("idle",
		fsm.Events{{Name: "go", Src: []string{"idle"}, Dst: "busy"}},
		fsm.Callbacks{
			"enter_busy": WrapEvent(func(context.Context, *fsm.Event) error { return boom }),
		},
	)

	err := f.Event(context.Background(), "go")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "busy", f.Current())
}

func TestIsRealError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fsm.NoTransitionError{}, false},
		{fsm.CanceledError{}, false},
		{fmt.Errorf("wrapped: %w", fsm.CanceledError{}), false},
		{fsm.InvalidEventError{Event: "go", State: "busy"}, true},
		{errors.New("boom"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRealError(tt.err), "%v", tt.err)
	}
}
