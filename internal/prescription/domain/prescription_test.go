package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusFulfilled, true},
		{StatusPending, StatusPartiallyFulfilled, true},
		{StatusPending, StatusCancelled, true},
		{StatusPartiallyFulfilled, StatusFulfilled, true},
		{StatusPartiallyFulfilled, StatusCancelled, true},
		{StatusPartiallyFulfilled, StatusPending, false},
		{StatusFulfilled, StatusCancelled, true},
		{StatusFulfilled, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusFulfilled, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&Prescription{Status: StatusPending}).IsTerminal())
	assert.False(t, (&Prescription{Status: StatusPartiallyFulfilled}).IsTerminal())
	assert.True(t, (&Prescription{Status: StatusFulfilled}).IsTerminal())
	assert.True(t, (&Prescription{Status: StatusCancelled}).IsTerminal())
}
