// Package version contains the medium version.
package version

// Version is the medium version.
const Version = "0.4.0"
