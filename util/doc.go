// Package util provides small generic helpers shared by openbatch packages:
// pointer construction for optional request fields and deterministic
// collection utilities.
package util
