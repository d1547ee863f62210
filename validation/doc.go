// Package validation provides field-constraint checking for openbatch.
//
// Request variants check their fields programmatically with the fluent
// Validator: each rule records a FieldError and Err converts the collection
// into an INVALID_FIELD AppError. Configuration structs use struct tag
// validation through the validator library instead.
package validation
