package runner

import (
	"context"
	"testing"

	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	ctx := context.Background()
	r := &ExecRunner{}

	t.Run("zero exit", func(t *testing.T) {
		assert.NoError(t, r.Run(ctx, "sh", "-c", "exit 0"))
	})

	t.Run("non-zero exit carries the child's status", func(t *testing.T) {
		err := r.Run(ctx, "sh", "-c", "exit 3")

		var cmdErr *apperrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, 3, cmdErr.ExitCode)
		assert.Contains(t, cmdErr.Command, "sh -c")
	})

	t.Run("missing binary", func(t *testing.T) {
		err := r.Run(ctx, "eks-deployer-no-such-tool")
		assert.True(t, apperrors.IsToolNotFound(err))
	})
}

func TestExecRunner_RunWithInput(t *testing.T) {
	ctx := context.Background()
	r := &ExecRunner{}

	err := r.RunWithInput(ctx, "hello", "sh", "-c", `test "$(cat)" = hello`)
	assert.NoError(t, err)
}

func TestExecRunner_Output(t *testing.T) {
	ctx := context.Background()
	r := &ExecRunner{}

	t.Run("captures trimmed stdout", func(t *testing.T) {
		out, err := r.Output(ctx, "sh", "-c", "echo hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("captures stderr too", func(t *testing.T) {
		out, err := r.Output(ctx, "sh", "-c", "echo oops >&2; exit 1")
		require.Error(t, err)
		assert.Contains(t, out, "oops")
	})
}

func TestExecRunner_LookPath(t *testing.T) {
	r := &ExecRunner{}

	path, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = r.LookPath("eks-deployer-no-such-tool")
	assert.True(t, apperrors.IsToolNotFound(err))
}
