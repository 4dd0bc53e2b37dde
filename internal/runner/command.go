// Package runner provides typed subprocess invocations for the external
// tools the pipeline drives: the AWS CLI, the Docker CLI, and kubectl.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/rs/zerolog"
)

// Tool names probed by the preflight step, in report order.
const (
	ToolAWS     = "aws"
	ToolDocker  = "docker"
	ToolKubectl = "kubectl"
)

// RequiredTools lists every external CLI the pipeline invokes.
func RequiredTools() []string {
	return []string{ToolAWS, ToolDocker, ToolKubectl}
}

// CommandRunner executes external commands. Run and RunWithInput stream
// the child's stdout/stderr straight through to the operator; Output
// captures combined output for short probes.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	RunWithInput(ctx context.Context, input, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed CommandRunner. Non-zero exits become
// CommandError carrying the child's status; missing binaries become
// ToolNotFoundError.
type ExecRunner struct{}

var _ CommandRunner = &ExecRunner{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	line := commandLine(name, args)
	zerolog.Ctx(ctx).Debug().Str("command", line).Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return wrapExecError(cmd.Run(), name, line)
}

func (r *ExecRunner) RunWithInput(ctx context.Context, input, name string, args ...string) error {
	line := commandLine(name, args)
	zerolog.Ctx(ctx).Debug().Str("command", line).Msg("running command with stdin")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return wrapExecError(cmd.Run(), name, line)
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	line := commandLine(name, args)
	zerolog.Ctx(ctx).Debug().Str("command", line).Msg("capturing command output")

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), wrapExecError(err, name, line)
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &apperrors.ToolNotFoundError{Tool: name}
	}
	return path, nil
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func wrapExecError(err error, tool, line string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &apperrors.CommandError{Command: line, ExitCode: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return &apperrors.ToolNotFoundError{Tool: tool}
	}
	return fmt.Errorf("run %s: %w", tool, err)
}

// FakeRunner is a scripted CommandRunner for tests. Errs and Outputs are
// matched by command-line prefix; Missing names tools LookPath rejects.
type FakeRunner struct {
	Calls   []string
	Inputs  []string
	Errs    map[string]error
	Outputs map[string]string
	Missing map[string]bool
}

var _ CommandRunner = &FakeRunner{}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) error {
	line := commandLine(name, args)
	f.Calls = append(f.Calls, line)
	return f.scripted(line)
}

func (f *FakeRunner) RunWithInput(ctx context.Context, input, name string, args ...string) error {
	line := commandLine(name, args)
	f.Calls = append(f.Calls, line)
	f.Inputs = append(f.Inputs, input)
	return f.scripted(line)
}

func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	line := commandLine(name, args)
	f.Calls = append(f.Calls, line)
	for prefix, out := range f.Outputs {
		if strings.HasPrefix(line, prefix) {
			return out, f.scripted(line)
		}
	}
	return "", f.scripted(line)
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", &apperrors.ToolNotFoundError{Tool: name}
	}
	return "/usr/local/bin/" + name, nil
}

// CalledWithPrefix reports whether any recorded invocation starts with prefix.
func (f *FakeRunner) CalledWithPrefix(prefix string) bool {
	for _, call := range f.Calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

func (f *FakeRunner) scripted(line string) error {
	for prefix, err := range f.Errs {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}
