package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fproject/eks-deployer/cmd/eks-deployer/commands"
	"github.com/fproject/eks-deployer/internal/di"
	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := di.ProvideLogger()
	if os.Getenv("EKS_DEPLOYER_DEBUG") != "" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	// A second signal kills the process the default way; the first one
	// cancels the context so the current step can stop cleanly.
	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "eks-deployer",
		Usage: "Deploy the library backend to EKS",
		Description: `Builds the backend container image, pushes it to ECR, and rolls it out
to the EKS cluster in one fixed sequence with no retries and no rollback.

Every setting has a working default, so a plain "eks-deployer deploy"
from the repository root performs a full deployment. Set
EKS_DEPLOYER_DEBUG=1 to log the underlying tool invocations.`,
		Commands: []*cli.Command{
			commands.DeployCommand(&logger),
			commands.StatusCommand(&logger),
			commands.PreflightCommand(&logger),
			commands.MigrateCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(apperrors.ExitCode(err))
	}
}
