package casepackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusDraft, StatusPublished, StatusWithdrawn, StatusAssigned,
	StatusInProgress, StatusCompleted, StatusCancelled,
}

var allEvents = []Event{
	EventPublished, EventWithdrawn, EventAssigned,
	EventStarted, EventCompleted, EventCancelled,
}

func TestIsValidTransition_LegalPairs(t *testing.T) {
	cases := []struct {
		from  Status
		to    Status
		event Event
	}{
		{StatusDraft, StatusPublished, EventPublished},
		{StatusDraft, StatusAssigned, EventAssigned},
		{StatusDraft, StatusCancelled, EventCancelled},
		{StatusPublished, StatusWithdrawn, EventWithdrawn},
		{StatusPublished, StatusAssigned, EventAssigned},
		{StatusPublished, StatusCancelled, EventCancelled},
		{StatusWithdrawn, StatusPublished, EventPublished},
		{StatusWithdrawn, StatusCancelled, EventCancelled},
		{StatusAssigned, StatusInProgress, EventStarted},
		{StatusAssigned, StatusWithdrawn, EventWithdrawn},
		{StatusAssigned, StatusCancelled, EventCancelled},
		{StatusInProgress, StatusCompleted, EventCompleted},
		{StatusInProgress, StatusCancelled, EventCancelled},
	}
	for _, tc := range cases {
		assert.True(t, IsValidTransition(tc.from, tc.to, tc.event),
			"%s -> %s under %s should be legal", tc.from, tc.to, tc.event)
	}
}

func TestIsValidTransition_WrongEventFails(t *testing.T) {
	// legal pair, wrong trigger
	assert.False(t, IsValidTransition(StatusDraft, StatusPublished, EventAssigned))
	assert.False(t, IsValidTransition(StatusPublished, StatusAssigned, EventPublished))
	assert.False(t, IsValidTransition(StatusInProgress, StatusCompleted, EventCancelled))
}

func TestIsValidTransition_ClosedOverIllegalPairs(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if _, legal := RequiredEvent(from, to); legal {
				continue
			}
			for _, ev := range allEvents {
				assert.False(t, IsValidTransition(from, to, ev),
					"%s -> %s under %s must be rejected", from, to, ev)
			}
		}
	}
}

func TestTerminalStates_HaveNoOutgoingTransitions(t *testing.T) {
	assert.Empty(t, LegalTargets(StatusCompleted))
	assert.Empty(t, LegalTargets(StatusCancelled))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
}

func TestNonTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusPublished, StatusWithdrawn, StatusAssigned, StatusInProgress} {
		assert.False(t, IsTerminal(s), "%s must not be terminal", s)
		assert.NotEmpty(t, LegalTargets(s))
	}
}

func TestIsTerminal_UnknownStatusIsNotTerminal(t *testing.T) {
	assert.False(t, IsTerminal(Status("LIMBO")))
}

func TestRequiredEvent(t *testing.T) {
	ev, ok := RequiredEvent(StatusPublished, StatusAssigned)
	assert.True(t, ok)
	assert.Equal(t, EventAssigned, ev)

	_, ok = RequiredEvent(StatusCompleted, StatusInProgress)
	assert.False(t, ok)
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("LIMBO").Valid())
	assert.False(t, Status("").Valid())
}
