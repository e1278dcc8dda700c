// Package errors provides the structured error type used across pmnps.
// Errors carry a machine-readable code, a user-facing message and optional
// details, and map onto CLI exit codes.
package errors
