package counter

import "github.com/zoobzio/capitan"

// Count lifecycle signals. These are published for decoupled consumers
// (audit logging, sounds); the controller itself is notified directly.
var (
	// CountChanged is emitted every time a transition settles on a new value.
	CountChanged = capitan.NewSignal(
		"badgecounter.count.changed",
		"Badge count settled on a new value",
	)

	// CountChangeFailed is emitted when a requested change is rejected or
	// the provider fails to apply it.
	CountChangeFailed = capitan.NewSignal(
		"badgecounter.count.change_failed",
		"Badge count change rejected",
	)

	// AutoIncrementToggled is emitted when the auto-increment timer is
	// started or stopped.
	AutoIncrementToggled = capitan.NewSignal(
		"badgecounter.autoincrement.toggled",
		"Auto-increment timer toggled",
	)
)
