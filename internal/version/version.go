// Package version provides centralized version information for Code Atlas.
package version

// Version can be overridden at build time using ldflags:
// -X codeatlas/internal/version.Version=1.2.3
var Version = "0.4.0"
