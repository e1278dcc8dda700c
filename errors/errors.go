package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
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

// ExitCode returns the CLI exit code for this error.
func (e *AppError) ExitCode() int { return ExitCodeFor(e.Code) }

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

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Common Error Constructors ---

// ConfigNotFound reports a workspace without a root config file.
func ConfigNotFound(path string) *AppError {
	return &AppError{
		Code:    ErrCodeConfigNotFound,
		Message: "No pmnps config found. Please run `pmnps` inside an initialized workspace.",
		Details: map[string]any{"path": path},
	}
}

// NoEligible reports an empty candidate set. The message is shown as-is.
func NoEligible(message string) *AppError {
	return &AppError{Code: ErrCodeNoEligible, Message: message}
}

// NotFound creates a new AppError for a member that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// UnknownChoice reports a name that is not one of the valid choices.
func UnknownChoice(field, value string, choices []string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("Unknown %s %q, choose one of: %s", field, value, strings.Join(choices, ", ")),
		Details: map[string]any{"field": field, "value": value, "choices": choices},
	}
}

// Validation creates a new AppError for config validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: message}
}

// ManifestInvalid reports a member manifest that could not be parsed.
func ManifestInvalid(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeManifestInvalid, Message: fmt.Sprintf("Unable to parse %s", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// DependencyCycle reports members whose declared dependencies form a cycle.
func DependencyCycle(nodes []string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeDependencyCycle,
		Message: fmt.Sprintf("Dependency cycle between: %s", strings.Join(nodes, ", ")),
		Details: map[string]any{"nodes": nodes}, Cause: cause,
	}
}

// ProcessFailed reports a member command that exited non-zero.
func ProcessFailed(member, command string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeProcessFailed,
		Message: fmt.Sprintf("`%s` failed for %s", command, member),
		Details: map[string]any{"member": member, "command": command}, Cause: cause,
	}
}

// Canceled reports an interrupted run.
func Canceled(cause error) *AppError {
	return &AppError{Code: ErrCodeCanceled, Message: "Interrupted.", Cause: cause}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.", Cause: cause,
	}
}

// --- Helpers ---

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError extracts an AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap converts any error into an AppError. AppErrors in the chain are
// returned unchanged, anything else becomes INTERNAL_ERROR.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// ExitCode returns the CLI exit code for err. A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return Wrap(err).ExitCode()
}
