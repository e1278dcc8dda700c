// Package version reports the pmnps build.
//
// Version, git commit, branch and build time are set at compile time via
// -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/pmnps/version.Version=1.4.0" ./cmd/pmnps
//
// Builds without ldflags fall back to the VCS stamp in the binary.
package version
