package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsSourceUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"source error no status", NewSourceError(errors.New("dial failed"), 0), true},
		{"source error 503", NewSourceError(errors.New("unavailable"), 503), true},
		{"source error 429", NewSourceError(errors.New("rate limited"), 429), true},
		{"source error 404", NewSourceError(errors.New("not found"), 404), false},
		{"wrapped source error", eris.Wrap(NewSourceError(errors.New("bad gateway"), 502), "fetch"), true},
		{"connection refused", fmt.Errorf("request: %w", syscall.ECONNREFUSED), true},
		{"connection reset", fmt.Errorf("request: %w", syscall.ECONNRESET), true},
		{"string heuristic", errors.New("Get \"http://x\": no such host"), true},
		{"io timeout string", errors.New("read tcp: i/o timeout"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSourceUnavailable(tt.err))
		})
	}
}

func TestSourceErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	se := NewSourceError(inner, 500)

	assert.Equal(t, "inner", se.Error())
	assert.ErrorIs(t, se, inner)
}
