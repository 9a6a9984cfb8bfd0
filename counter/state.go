package counter

// State is the lock state of the Controller.
type State int

const (
	// StateIdle means no change is requested or animating; triggers are
	// accepted.
	StateIdle State = iota

	// StateBusy means a change is pending confirmation or animating;
	// triggers are dropped.
	StateBusy
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Direction is the slide direction of a transition.
type Direction int

const (
	DirectionNone Direction = iota
	// DirectionRight slides the new value in from the right (count grew).
	DirectionRight
	// DirectionLeft slides the new value in from the left (count shrank).
	DirectionLeft
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionRight:
		return "right"
	case DirectionLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Trigger is a change request source action.
type Trigger int

const (
	TriggerIncrement Trigger = iota
	TriggerDecrement
	TriggerReset
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerIncrement:
		return "increment"
	case TriggerDecrement:
		return "decrement"
	case TriggerReset:
		return "reset"
	default:
		return "unknown"
	}
}
