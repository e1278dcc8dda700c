package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Precondition errors
const (
	// ErrCodeConfigNotFound indicates the workspace has no root config file.
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	// ErrCodeNoEligible indicates an operation found no members to act on.
	ErrCodeNoEligible ErrorCode = "NO_ELIGIBLE"
	// ErrCodeNotFound indicates the requested member was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidConfig indicates the root config failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeManifestInvalid indicates a member manifest could not be parsed.
	ErrCodeManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// ErrCodeDependencyCycle indicates declared dependencies form a cycle.
	ErrCodeDependencyCycle ErrorCode = "DEPENDENCY_CYCLE"
)

// Execution errors
const (
	// ErrCodeProcessFailed indicates an invoked process exited non-zero.
	ErrCodeProcessFailed ErrorCode = "PROCESS_FAILED"
	// ErrCodeCanceled indicates the run was interrupted.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeInternal indicates an unexpected error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var exitCodes = map[ErrorCode]int{
	ErrCodeInvalidInput:  2,
	ErrCodeInvalidConfig: 2,
	ErrCodeCanceled:      130,
}

// ExitCodeFor returns the process exit code for an error code.
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return 1
}
