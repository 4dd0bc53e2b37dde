package commands

import (
	"context"
	"strings"

	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/fproject/eks-deployer/internal/runner"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func PreflightCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "preflight",
		Usage: "Verify the required tools are installed",
		Description: `Check that aws, docker, and kubectl resolve on PATH and report the
version of each. The same check runs as the first step of deploy; this
command exists so a fresh machine can be validated without starting a
deployment.`,
		Action: func(c *cli.Context) error {
			return preflightAction(c, logger)
		},
	}
}

func preflightAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := logger.WithContext(c.Context)
	commandRunner := &runner.ExecRunner{}

	var missing []string
	for _, tool := range runner.RequiredTools() {
		path, err := commandRunner.LookPath(tool)
		if err != nil {
			logger.Error().Str("tool", tool).Msg("NOT FOUND")
			missing = append(missing, tool)
			continue
		}
		logger.Info().
			Str("tool", tool).
			Str("path", path).
			Str("version", toolVersion(ctx, commandRunner, tool)).
			Msg("OK")
	}

	if len(missing) > 0 {
		return &apperrors.ToolNotFoundError{Tool: missing[0]}
	}
	return nil
}

func toolVersion(ctx context.Context, commandRunner runner.CommandRunner, tool string) string {
	var (
		version string
		err     error
	)
	switch tool {
	case runner.ToolAWS:
		version, err = runner.NewAWSRunner(commandRunner).Version(ctx)
	case runner.ToolDocker:
		version, err = runner.NewDockerRunner(commandRunner).Version(ctx)
	case runner.ToolKubectl:
		version, err = runner.NewKubeRunner(commandRunner).Version(ctx)
	}
	if err != nil {
		return "unknown"
	}
	return firstLine(version)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
