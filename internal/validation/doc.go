// Package validation provides centralized input validation logic.
// This includes bucket name, object key, prefix and run parameter validation.
//
// Inputs are validated before any task is created so a bad invocation fails
// fast instead of producing per-item errors.
package validation
