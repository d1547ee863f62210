// Package version reports the openbatch build version. Version and Commit are
// set at link time:
//
//	go build -ldflags "-X github.com/kbukum/openbatch/version.Version=1.2.0"
//
// Missing values are filled from the module build info.
package version
