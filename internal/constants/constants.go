// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.4-" + runtime.GOOS + "/" + runtime.GOARCH

// UserAgent identifies outbound requests to weather providers.
const UserAgent = "seaglow/" + Version
