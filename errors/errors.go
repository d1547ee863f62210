package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// AppError is the unified error type returned by every openbatch package.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried unchanged.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Construction errors ---

// MissingPlaceholder creates an AppError naming every unresolved placeholder.
// Names are sorted and de-duplicated so the message is stable.
func MissingPlaceholder(names []string) *AppError {
	uniq := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	sort.Strings(uniq)
	return &AppError{
		Code:    ErrCodeMissingPlaceholder,
		Message: fmt.Sprintf("missing value for placeholder(s): %s", strings.Join(uniq, ", ")),
		Details: map[string]any{"placeholders": uniq},
	}
}

// IncompatibleInstance creates an AppError for an instance kind that cannot
// feed the given endpoint.
func IncompatibleInstance(endpoint, instanceKind, reason string) *AppError {
	msg := fmt.Sprintf("%s instance cannot be used with %s", instanceKind, endpoint)
	if reason != "" {
		msg += ": " + reason
	}
	return &AppError{
		Code:    ErrCodeIncompatibleInstance,
		Message: msg,
		Details: map[string]any{"endpoint": endpoint, "instance": instanceKind},
	}
}

// InvalidField creates an AppError for a field value that violates a constraint.
func InvalidField(field string, value any, constraint string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("invalid value %v for field %q: %s", value, field, constraint),
		Details: map[string]any{"field": field, "value": value, "constraint": constraint},
	}
}

// DuplicateCustomID creates an AppError for a custom_id already emitted.
func DuplicateCustomID(customID string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateCustomID,
		Message: fmt.Sprintf("custom_id %q was already written", customID),
		Details: map[string]any{"custom_id": customID},
	}
}

// LimitExceeded creates an AppError for a write that would cross a limit.
// kind is "file_size" or "request_count".
func LimitExceeded(kind string, current, limit int64) *AppError {
	return &AppError{
		Code:    ErrCodeLimitExceeded,
		Message: fmt.Sprintf("%s limit exceeded: %d > %d", kind, current, limit),
		Details: map[string]any{"kind": kind, "current": current, "limit": limit},
	}
}

// MixedEndpoints creates an AppError for a second endpoint in a single-endpoint file.
func MixedEndpoints(existing, incoming string) *AppError {
	return &AppError{
		Code:    ErrCodeMixedEndpoints,
		Message: fmt.Sprintf("file already targets %s, refusing %s", existing, incoming),
		Details: map[string]any{"existing": existing, "incoming": incoming},
	}
}

// --- Resource errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id),
		Details: details,
	}
}

// AlreadyExists creates a new AppError for a resource that already exists.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("%s already exists", resource),
		Details: map[string]any{"resource": resource},
	}
}

// FileIO creates a new AppError wrapping a filesystem failure.
func FileIO(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeFileIO, Message: fmt.Sprintf("%s %s", op, path),
		Retryable: true, Cause: cause,
		Details: map[string]any{"op": op, "path": path},
	}
}

// --- Validation errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for a failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("%s is required", field),
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "unexpected internal error",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
