package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors. These abort the single operation that raised them.
const (
	// ErrCodeMissingPlaceholder indicates a template referenced a name the mapping does not provide.
	ErrCodeMissingPlaceholder ErrorCode = "MISSING_PLACEHOLDER"
	// ErrCodeIncompatibleInstance indicates an input instance cannot feed the configured endpoint.
	ErrCodeIncompatibleInstance ErrorCode = "INCOMPATIBLE_INSTANCE"
	// ErrCodeInvalidField indicates a request field violates its documented constraint.
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"
	// ErrCodeDuplicateCustomID indicates a custom_id was already written in the session.
	ErrCodeDuplicateCustomID ErrorCode = "DUPLICATE_CUSTOM_ID"
	// ErrCodeLimitExceeded indicates a write would cross the file size or request count limit.
	ErrCodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"
	// ErrCodeMixedEndpoints indicates a second endpoint was written to a single-endpoint file.
	ErrCodeMixedEndpoints ErrorCode = "MIXED_ENDPOINTS"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists or is held by someone else.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeFileIO indicates a file could not be opened, read, or written.
	ErrCodeFileIO ErrorCode = "FILE_IO"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure inside the library.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeFileIO:   true,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
