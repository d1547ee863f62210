// Package errors provides the unified error type for openbatch.
// It implements structured errors with machine-readable codes and details
// so callers can branch on the failure kind without parsing messages.
package errors
