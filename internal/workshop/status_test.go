package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCancelled},
		{StatusInProgress, StatusWaitingParts},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
		{StatusWaitingParts, StatusInProgress},
		{StatusWaitingParts, StatusCompleted},
		{StatusCompleted, StatusDelivered},
		{StatusCompleted, StatusInProgress}, // reopen
		{StatusCompleted, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusDelivered},
		{StatusDelivered, StatusInProgress},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusInProgress},
		{StatusInProgress, StatusPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestClosesOrder(t *testing.T) {
	assert.True(t, ClosesOrder(StatusCompleted))
	assert.True(t, ClosesOrder(StatusDelivered))
	assert.False(t, ClosesOrder(StatusInProgress))
	assert.False(t, ClosesOrder(StatusCancelled))
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.False(t, IsValidStatus(Status("SHIPPED")))
}
