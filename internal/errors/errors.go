package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoDeployment    = errors.New("manifest contains no Deployment document")
	ErrSecretNotString = errors.New("secret has no string value")
)

// ToolNotFoundError reports a required external executable missing from PATH.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("required tool %q not found in PATH", e.Tool)
}

// CommandError reports a non-zero exit from an invoked external tool.
// ExitCode holds the tool's own exit status; -1 means the process was
// killed or never reported one.
type CommandError struct {
	Command  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

// StepError wraps a fatal error with the name of the pipeline step that
// produced it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsToolNotFound reports whether err is (or wraps) a missing-tool error.
func IsToolNotFound(err error) bool {
	var notFound *ToolNotFoundError
	return errors.As(err, &notFound)
}

// ExitCode maps err to the process exit status: zero for nil, the failing
// command's own status when one is known, otherwise 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
