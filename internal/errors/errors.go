package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotGitRepository indicates the target path is not a git repository
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrNotInitialized indicates the pile configuration is missing or incomplete
	ErrNotInitialized = errors.New("pile is not initialized in this repository")

	// ErrInvalidRange indicates a commit range endpoint could not be resolved
	ErrInvalidRange = errors.New("invalid commit range")

	// ErrEmptyRange indicates a resolved commit range contains no commits
	ErrEmptyRange = errors.New("no commits in range")

	// ErrPatchNamingExhausted indicates the collision-suffix retry bound was hit
	ErrPatchNamingExhausted = errors.New("exhausted patch name collision suffixes")

	// ErrMissingPatch indicates the series manifest references a file not on disk
	ErrMissingPatch = errors.New("patch listed in series is missing")

	// ErrPatchApply indicates a patch failed to apply during branch reconstruction
	ErrPatchApply = errors.New("patch failed to apply")

	// ErrBranchInUse indicates the target branch is checked out in another worktree
	ErrBranchInUse = errors.New("branch is checked out in another worktree")

	// ErrNoChanges indicates an incremental extraction found nothing to share
	ErrNoChanges = errors.New("no patches changed since the recorded pile state")

	// ErrUnexpectedDiffStatus indicates an unrecognized status letter in a diff
	ErrUnexpectedDiffStatus = errors.New("unexpected diff status")

	// ErrGitOperationFailed indicates a git command returned an error
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// New creates a new error with the given message.
// This is a convenience function that wraps errors.New.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
// This is a convenience function that wraps fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
// This is a convenience function that wraps errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience function that wraps errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GitError represents an error that occurred during a Git operation.
// It captures the command details, underlying error, and command output.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface with a detailed, user-friendly error message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}

// RangeError represents a commit range that failed to resolve.
// Token holds the endpoint that could not be resolved.
type RangeError struct {
	Range string
	Token string
	Err   error
}

// Error implements the error interface, naming the unresolvable token.
func (e *RangeError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("cannot resolve %q in range %q: %v", e.Token, e.Range, e.Err)
	}
	return fmt.Sprintf("cannot resolve range %q: %v", e.Range, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *RangeError) Unwrap() error {
	return e.Err
}

// NewRangeError creates a new RangeError with the given parameters.
func NewRangeError(rangeSpec, token string, err error) *RangeError {
	return &RangeError{
		Range: rangeSpec,
		Token: token,
		Err:   err,
	}
}

// ApplyError represents a patch that failed to apply during reconstruction.
// Position is the 1-based index of the patch in the series.
type ApplyError struct {
	Patch    string
	Position int
	Err      error
	Output   string
}

// Error implements the error interface, naming the failing patch and position.
func (e *ApplyError) Error() string {
	msg := fmt.Sprintf("patch %d (%s) failed to apply", e.Position, e.Patch)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports a match for the ErrPatchApply sentinel.
func (e *ApplyError) Is(target error) bool {
	return target == ErrPatchApply
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewApplyError creates a new ApplyError with the given parameters.
func NewApplyError(patch string, position int, err error, output string) *ApplyError {
	return &ApplyError{
		Patch:    patch,
		Position: position,
		Err:      err,
		Output:   output,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
