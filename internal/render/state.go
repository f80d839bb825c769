package render

// State is a render job's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StatePriming   State = "priming"
	StateCapturing State = "capturing"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

func (s State) canTransition(next State) bool {
	switch s {
	case StateIdle:
		return next == StatePriming || next.Terminal()
	case StatePriming:
		return next == StateCapturing || next.Terminal()
	case StateCapturing:
		return next.Terminal()
	default:
		return false
	}
}
