package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"invalid argument", InvalidArgument("unknown color id %d", 7), ErrInvalidArgument, "unknown color id 7: invalid argument"},
		{"io", IO(cause, "write %s", "/tmp/x.png"), ErrIO, "write /tmp/x.png: disk full: i/o error"},
		{"invariant", Invariant("plane sizes differ"), ErrInvariantViolation, "plane sizes differ: invariant violation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.kind))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	err := InvalidArgument("bad")
	assert.False(t, Is(err, ErrIO))
	assert.False(t, Is(err, ErrInvariantViolation))
}
