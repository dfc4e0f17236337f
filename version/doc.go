// Package version reports the build the static server is running.
//
// Version and commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/depdep/version.Version=1.2.0" ./cmd/static-server
//
// Missing values fall back to the VCS stamp embedded by the Go toolchain.
package version
