package commands

import (
	"fmt"

	"github.com/fproject/eks-deployer/internal/di"
	"github.com/fproject/eks-deployer/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

func DeployCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Build, push, and roll out the backend image to EKS",
		Description: `Run the full deployment sequence against the configured cluster.

The sequence:
   1. preflight          - verify aws, docker, and kubectl are installed
   2. ensure-repository  - create the ECR repository if it is missing
   3. registry-login     - docker login with a short-lived ECR token
   4. build-image        - docker build from the working directory
   5. push-image         - tag and push the image to the registry
   6. update-kubeconfig  - point kubectl at the EKS cluster
   7. apply-manifest     - kubectl apply the deployment manifest
   8. rollout-status     - wait for the rollout to finish
   9. pod-status         - list workload pods (informational)
  10. service-status     - describe the service (informational)

The run halts at the first failure. Nothing is retried or rolled back;
fix the cause and run the command again.`,
		Flags: append(configFlags(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the step plan without executing anything",
			},
		),
		Action: func(c *cli.Context) error {
			return deployAction(c, logger)
		},
	}
}

func deployAction(c *cli.Context, logger *zerolog.Logger) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	runLogger := logger.With().Str("run_id", ksuid.New().String()).Logger()
	ctx := runLogger.WithContext(c.Context)

	if c.Bool("dry-run") {
		plan := pipeline.New(pipeline.Steps(pipeline.Deps{Config: cfg})...).Plan()
		runLogger.Info().Msg("DRY RUN: Would execute the following steps:")
		for i, name := range plan {
			runLogger.Info().Msgf("  %2d. %s", i+1, name)
		}
		return nil
	}

	container, err := di.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	deps := di.MustGet[pipeline.Deps](container)

	state := &pipeline.State{}
	if err := pipeline.New(pipeline.Steps(deps)...).Run(ctx, state); err != nil {
		return err
	}

	runLogger.Info().
		Str("image", cfg.RemoteImage(state.RegistryHost)).
		Str("cluster", cfg.Cluster).
		Str("namespace", state.NamespaceOr(cfg.Namespace)).
		Msg("Deployment complete")
	return nil
}
