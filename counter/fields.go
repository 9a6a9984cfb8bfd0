package counter

import "github.com/zoobzio/capitan"

// Field keys for counter events.
var (
	// KeyAppID is the application whose badge changed.
	KeyAppID = capitan.NewStringKey("app_id")

	// KeyCount is the settled badge count.
	KeyCount = capitan.NewIntKey("count")

	// KeyPrevious is the badge count displayed before the change.
	KeyPrevious = capitan.NewIntKey("previous")

	// KeyDisplay is the formatted value shown to the user.
	KeyDisplay = capitan.NewStringKey("display")

	// KeyError is the error message when a change fails.
	KeyError = capitan.NewStringKey("error")

	// KeyActive reports whether auto-increment is running.
	KeyActive = capitan.NewStringKey("active")
)
