// Package version holds the ndsrom release version.
package version

// Version is the current release of ndsrom
const Version = "0.3.0"
