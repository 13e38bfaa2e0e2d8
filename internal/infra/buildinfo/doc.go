// Package buildinfo exposes version information injected via ldflags:
//
//   - Version: semantic version (e.g. "1.0.0")
//   - Commit: git commit hash
//   - BuildTime: build timestamp
//
// The Go version and platform are read from the runtime.
//
//	go build -ldflags "-X .../buildinfo.Version=1.0.0 -X .../buildinfo.Commit=abc123"
package buildinfo
