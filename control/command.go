// Package control defines lightweight command messages used by the UI to
// request actions from the application. Commands are forwarded to the
// counter controller's mailbox, which serializes them with the badge
// provider's notifications.
package control

// CommandType enumerates supported command operations.
type CommandType int

const (
	CmdIncrement CommandType = iota
	CmdDecrement
	CmdReset
	CmdToggleAuto
)

// String returns the string representation of the command type.
func (t CommandType) String() string {
	switch t {
	case CmdIncrement:
		return "increment"
	case CmdDecrement:
		return "decrement"
	case CmdReset:
		return "reset"
	case CmdToggleAuto:
		return "toggle-auto"
	default:
		return "unknown"
	}
}

// Command is the message sent from the UI to AppManager.EnqueueCommand.
// The optional Reply channel receives nil once the command was queued, or
// an error if it was rejected.
type Command struct {
	Type  CommandType
	Reply chan error // optional reply channel
}
