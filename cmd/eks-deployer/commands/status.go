package commands

import (
	"github.com/fproject/eks-deployer/internal/manifest"
	"github.com/fproject/eks-deployer/internal/pipeline"
	"github.com/fproject/eks-deployer/internal/runner"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func StatusCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show pod and service status for the deployed backend",
		Description: `Run only the read-only status queries from the deployment sequence:
list the workload's pods and describe its service. Nothing on the
cluster is changed. Empty results are not an error; the command fails
only when the manifest cannot be read or kubectl is not installed.

Assumes kubectl is already pointed at the right cluster, for example by
a previous deploy.`,
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			return statusAction(c, logger)
		},
	}
}

func statusAction(c *cli.Context, logger *zerolog.Logger) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(c.Context)

	commandRunner := &runner.ExecRunner{}
	if _, err := commandRunner.LookPath(runner.ToolKubectl); err != nil {
		return err
	}

	info, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Config: cfg,
		Runner: commandRunner,
		Kube:   runner.NewKubeRunner(commandRunner),
	}
	state := &pipeline.State{Manifest: info}

	return pipeline.New(
		pipeline.PodStatus(deps),
		pipeline.ServiceStatus(deps),
	).Run(ctx, state)
}
