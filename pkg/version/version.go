// Package version records the runner build version.
package version

// Version is the runner version, overridden at build time via
// -ldflags "-X github.com/hemeai/temstapro-runner/pkg/version.Version=...".
var Version = "dev"
