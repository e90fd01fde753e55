package task

import "fmt"

// State is the lifecycle state of one video generation task.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// IsTerminal reports whether a state can never change again.
func IsTerminal(s State) bool {
	return s == StateCompleted || s == StateFailed
}

// Transition validates a state change and returns the next state. Stages
// never mutate task state themselves; the orchestrator applies transitions
// through this function.
func Transition(from, to State) (State, error) {
	if !allowedTransition(from, to) {
		return from, fmt.Errorf("invalid transition: %s -> %s", from, to)
	}
	return to, nil
}

func allowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateProcessing
	case StateProcessing:
		return to == StateCompleted || to == StateFailed
	default:
		// Terminal states are never resurrected.
		return false
	}
}
