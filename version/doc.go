// Package version reports the build of a routekit binary.
//
// Version, Commit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/routekit/version.Version=0.3.0"
//
// Unset values fall back to the VCS stamps the Go toolchain embeds.
package version
