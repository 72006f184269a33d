// Package casepackage models debt-collection case packages, their lifecycle
// state machine, and the immutable flow audit trail.
package casepackage

// Status is the lifecycle state of a case package.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusPublished  Status = "PUBLISHED"
	StatusWithdrawn  Status = "WITHDRAWN"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusWithdrawn, StatusAssigned,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event is the trigger that accompanies a status transition. Every legal
// transition is keyed to exactly one required event type.
type Event string

const (
	EventPublished Event = "package.published"
	EventWithdrawn Event = "package.withdrawn"
	EventAssigned  Event = "package.assigned"
	EventStarted   Event = "package.started"
	EventCompleted Event = "package.completed"
	EventCancelled Event = "package.cancelled"
)

type transitionKey struct {
	from Status
	to   Status
}

// transitions maps every legal (from, to) pair to its required event.
// COMPLETED and CANCELLED are terminal: no outgoing entries.
var transitions = map[transitionKey]Event{
	{StatusDraft, StatusPublished}: EventPublished,
	{StatusDraft, StatusAssigned}:  EventAssigned,
	{StatusDraft, StatusCancelled}: EventCancelled,

	{StatusPublished, StatusWithdrawn}: EventWithdrawn,
	{StatusPublished, StatusAssigned}:  EventAssigned,
	{StatusPublished, StatusCancelled}: EventCancelled,

	{StatusWithdrawn, StatusPublished}: EventPublished,
	{StatusWithdrawn, StatusCancelled}: EventCancelled,

	{StatusAssigned, StatusInProgress}: EventStarted,
	{StatusAssigned, StatusWithdrawn}:  EventWithdrawn,
	{StatusAssigned, StatusCancelled}:  EventCancelled,

	{StatusInProgress, StatusCompleted}: EventCompleted,
	{StatusInProgress, StatusCancelled}: EventCancelled,
}

// RequiredEvent returns the event a (from, to) transition demands, and
// whether the transition is legal at all.
func RequiredEvent(from, to Status) (Event, bool) {
	ev, ok := transitions[transitionKey{from, to}]
	return ev, ok
}

// IsValidTransition reports whether moving from current to target under the
// given event is legal. The event must equal the transition's required event.
func IsValidTransition(current, target Status, event Event) bool {
	required, ok := transitions[transitionKey{current, target}]
	return ok && required == event
}

// LegalTargets returns every status reachable from current, in no particular
// order.
func LegalTargets(current Status) []Status {
	var out []Status
	for k := range transitions {
		if k.from == current {
			out = append(out, k.to)
		}
	}
	return out
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(LegalTargets(s)) == 0 && s.Valid()
}
